package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/getuserd/userd/pkg/cli/internal/output"
	"github.com/getuserd/userd/pkg/client"
	"github.com/getuserd/userd/pkg/directory"
	"github.com/spf13/cobra"
)

var (
	usersAddName     string
	usersAddEmail    string
	usersUpdateName  string
	usersUpdateEmail string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users on a running server",
	Long: `Manage users on a running userd server.

These commands talk to the REST API of a server started with "userd start".
Use --server (or the USERD_SERVER environment variable) to point them at a
non-default address.

Examples:
  userd users list
  userd users add --name Alice --email alice@example.com
  userd users add                                  # interactive form
  userd users get 1
  userd users update 1 --email alicia@example.com
  userd users delete 1`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List all users known to the server.

Examples:
  userd users list
  userd users list --json`,
	RunE: runUsersList,
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new user",
	Long: `Create a new user on the server.

When --name is omitted the command switches to an interactive form.

Examples:
  userd users add --name Alice --email alice@example.com
  userd users add --name Bob            # email left empty (basic mode only)
  userd users add                       # interactive`,
	RunE: runUsersAdd,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an existing user",
	Long: `Update an existing user.

Only the fields passed as flags are sent with the request. The default
server mode merges them into the stored user; a server running in basic
mode replaces the whole record instead.

Examples:
  userd users update 1 --name Alicia
  userd users update 1 --name Alicia --email alicia@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersUpdate,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)

	usersCmd.AddCommand(usersAddCmd)
	usersAddCmd.Flags().StringVar(&usersAddName, "name", "", "User name")
	usersAddCmd.Flags().StringVar(&usersAddEmail, "email", "", "User email address")

	usersCmd.AddCommand(usersUpdateCmd)
	usersUpdateCmd.Flags().StringVar(&usersUpdateName, "name", "", "New name")
	usersUpdateCmd.Flags().StringVar(&usersUpdateEmail, "email", "", "New email address")

	usersCmd.AddCommand(usersDeleteCmd)
}

// parseUserID converts a CLI argument into a numeric user id.
func parseUserID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: must be a number", arg)
	}
	return id, nil
}

// printUser renders one user as an aligned field list.
func printUser(u *directory.User) {
	fmt.Printf("  Id:     %d\n", u.ID)
	fmt.Printf("  Name:   %s\n", u.Name)
	fmt.Printf("  Email:  %s\n", u.Email)
}

// runUsersList lists all users on the server.
func runUsersList(_ *cobra.Command, _ []string) error {
	c := client.New(serverURL)
	users, err := c.ListUsers(context.Background())
	if err != nil {
		return err
	}

	if len(users) == 0 {
		printResult([]directory.User{}, func() {
			fmt.Println("No users yet.")
			fmt.Println()
			fmt.Println("Create one with: userd users add --name Alice --email alice@example.com")
		})
		return nil
	}

	printList(users, func() {
		fmt.Printf("Users (%d):\n\n", len(users))
		tw := output.Table()
		fmt.Fprintf(tw, "ID\tNAME\tEMAIL\n")
		fmt.Fprintf(tw, "--\t----\t-----\n")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
		_ = tw.Flush()
	})

	return nil
}

// runUsersGet fetches a single user by id.
func runUsersGet(_ *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	c := client.New(serverURL)
	user, err := c.GetUser(context.Background(), id)
	if err != nil {
		return notFoundError(err, fmt.Sprintf("user %d", id))
	}

	printResult(user, func() {
		fmt.Printf("User %d:\n", user.ID)
		printUser(user)
	})

	return nil
}

// runUsersAdd creates a new user, prompting interactively when the
// --name flag was omitted.
func runUsersAdd(cmd *cobra.Command, _ []string) error {
	// If flags were intentionally omitted (e.g., just ran "userd users add"),
	// run an interactive prompt instead.
	if !cmd.Flags().Changed("name") {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("What is the user's name?").
					Placeholder("Ada Lovelace").
					Value(&usersAddName).
					Validate(func(s string) error {
						if s == "" {
							return errors.New("name is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("What is the user's email address?").
					Placeholder("ada@example.com").
					Value(&usersAddEmail),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	c := client.New(serverURL)
	user, err := c.CreateUser(context.Background(), usersAddName, usersAddEmail)
	if err != nil {
		return err
	}

	printResult(user, func() {
		fmt.Printf("Created user %d\n", user.ID)
		printUser(user)
	})

	return nil
}

// runUsersUpdate sends only the fields whose flags were set.
func runUsersUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	var in directory.UpdateUser
	if cmd.Flags().Changed("name") {
		in.Name = &usersUpdateName
	}
	if cmd.Flags().Changed("email") {
		in.Email = &usersUpdateEmail
	}
	if in.IsEmpty() {
		return errors.New("nothing to update: pass --name and/or --email")
	}

	c := client.New(serverURL)
	user, err := c.UpdateUser(context.Background(), id, in)
	if err != nil {
		return notFoundError(err, fmt.Sprintf("user %d", id))
	}

	printResult(user, func() {
		fmt.Printf("Updated user %d\n", user.ID)
		printUser(user)
	})

	return nil
}

// runUsersDelete removes a user by id.
func runUsersDelete(_ *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	c := client.New(serverURL)
	removed, err := c.DeleteUser(context.Background(), id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user %d not found", id)
	}

	printResult(struct {
		ID      int  `json:"id"`
		Deleted bool `json:"deleted"`
	}{ID: id, Deleted: true}, func() {
		fmt.Printf("Deleted user %d\n", id)
	})

	return nil
}
