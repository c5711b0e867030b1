package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rpupo63/portfolio-blog-backend/client"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/spf13/cobra"
)

var (
	postTitle       string
	postContent     string
	postContentFile string
	postImage       string
	postAuthor      string
	postStatus      string
	skipConfirm     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every post, newest first",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long: `Create a post. The content comes from --content or --content-file
("-" reads standard input).`,
	RunE: runCreate,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a post",
	Long:  `Edit a post. Flags that are not given keep the post's current value.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <email>",
	Short: "Give the admin role to the identity registered under email",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrantAdmin,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a cover image and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the configured token",
	RunE:  runWhoami,
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, editCmd} {
		cmd.Flags().StringVar(&postTitle, "title", "", "Post title (1-100 characters)")
		cmd.Flags().StringVar(&postContent, "content", "", "Post content (markdown)")
		cmd.Flags().StringVar(&postContentFile, "content-file", "", "Read content from a file, - for stdin")
		cmd.Flags().StringVar(&postImage, "image", "", "Cover image URL, empty to clear")
		cmd.Flags().StringVar(&postAuthor, "author", "", "Author name (default Anonymous)")
		cmd.Flags().StringVar(&postStatus, "status", "", "Draft or Published")
	}
	deleteCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Delete without asking")
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// openConsole signs in and loads the post list. It fails for non-admins.
func openConsole(ctx context.Context, cmd *cobra.Command) (*client.Console, error) {
	var confirm client.Confirmer = promptConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	if skipConfirm {
		confirm = client.ConfirmFunc(func(string) (bool, error) { return true, nil })
	}

	console := client.NewConsole(newClient(), confirm)
	if err := console.Open(ctx); err != nil {
		if errors.Is(err, client.ErrNotAdmin) {
			return nil, fmt.Errorf("the configured token does not belong to an admin")
		}
		return nil, err
	}
	return console, nil
}

func printPosts(out io.Writer, posts []client.Post) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Created", "Status", "Author", "Title"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, post := range posts {
		table.Append([]string{
			post.ID.String(),
			post.CreatedAt.Format("2006-01-02 15:04"),
			post.Status,
			post.AuthorName,
			post.Title,
		})
	}
	table.Render()
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	console, err := openConsole(ctx, cmd)
	if err != nil {
		return err
	}
	printPosts(cmd.OutOrStdout(), console.Posts)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	post, err := newClient().GetPost(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n\n", post.Title, post.ID)
	fmt.Fprintf(out, "Author:  %s\nStatus:  %s\nCreated: %s\n", post.AuthorName, post.Status, post.CreatedAt.Format("2006-01-02 15:04"))
	if post.ImageURL != nil {
		fmt.Fprintf(out, "Image:   %s\n", *post.ImageURL)
	}
	fmt.Fprintf(out, "\n%s\n", post.Content)
	return nil
}

func readContent(cmd *cobra.Command) (string, error) {
	switch postContentFile {
	case "":
		return postContent, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	default:
		data, err := os.ReadFile(postContentFile)
		return string(data), err
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	content, err := readContent(cmd)
	if err != nil {
		return err
	}

	fields := models.BlogPostFields{
		Title:      postTitle,
		Content:    content,
		AuthorName: postAuthor,
		Status:     postStatus,
	}
	if postImage != "" {
		fields.ImageURL = &postImage
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	console, err := openConsole(ctx, cmd)
	if err != nil {
		return err
	}
	post, err := console.Save(ctx, uuid.Nil, fields)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", post.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	console, err := openConsole(ctx, cmd)
	if err != nil {
		return err
	}

	var current *client.Post
	for i := range console.Posts {
		if console.Posts[i].ID == id {
			current = &console.Posts[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("post %s not found", id)
	}

	fields := models.BlogPostFields{
		Title:      current.Title,
		Content:    current.Content,
		ImageURL:   current.ImageURL,
		AuthorName: current.AuthorName,
		Status:     current.Status,
	}
	flags := cmd.Flags()
	if flags.Changed("title") {
		fields.Title = postTitle
	}
	if flags.Changed("content") || flags.Changed("content-file") {
		if fields.Content, err = readContent(cmd); err != nil {
			return err
		}
	}
	if flags.Changed("image") {
		fields.ImageURL = &postImage
	}
	if flags.Changed("author") {
		fields.AuthorName = postAuthor
	}
	if flags.Changed("status") {
		fields.Status = postStatus
	}

	if _, err := console.Save(ctx, id, fields); err != nil {
		return describe(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	console, err := openConsole(ctx, cmd)
	if err != nil {
		return err
	}
	deleted, err := console.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, %d posts left\n", id, len(console.Posts))
	return nil
}

func runGrantAdmin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := newClient().SetAdmin(ctx, args[0]); err != nil {
		return describe(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	image, err := newClient().UploadImage(ctx, filepath.Base(args[0]), file)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), image.URL)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	identity, err := newClient().Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s role=%s\n", identity.ID, identity.Email, identity.Role)
	return nil
}

// describe expands validation failures into one line per field.
func describe(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	msg := apiErr.Message
	for field, reason := range apiErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, reason)
	}
	return errors.New(msg)
}
