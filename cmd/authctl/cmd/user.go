package cmd

import (
	"errors"
	"fmt"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/mongodb"
	"github.com/spf13/cobra"
)

var (
	userEmail   string
	userSubject string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up user registry records",
}

var userFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Find a user by email or identity-provider subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (userEmail == "") == (userSubject == "") {
			return errors.New("exactly one of --email or --subject is required")
		}

		ctx := cmd.Context()
		client, db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx, client)

		repo, err := mongodb.NewUserRepositoryMongo(ctx, db)
		if err != nil {
			return err
		}

		var user *domain.User
		if userEmail != "" {
			user, err = repo.GetUserByEmail(ctx, userEmail)
		} else {
			user, err = repo.GetUserBySubject(ctx, userSubject)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			fmt.Println("No matching user record")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("id:      %s\nsubject: %s\nemail:   %s\ncreated: %s\n",
			user.ID, user.Subject, user.Email, user.CreatedAt)
		return nil
	},
}

func init() {
	userFindCmd.Flags().StringVar(&userEmail, "email", "", "email address to look up")
	userFindCmd.Flags().StringVar(&userSubject, "subject", "", "identity-provider subject to look up")

	userCmd.AddCommand(userFindCmd)
}
