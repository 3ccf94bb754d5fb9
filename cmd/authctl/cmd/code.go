package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/auth/otp"
	"github.com/baliciaga/passwordless/mongodb"
	"github.com/spf13/cobra"
)

var (
	codeEmail string
	codeTTL   time.Duration
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Manage outstanding one-time login codes",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Codes are stored under the normalized address; match that here.
		codeEmail = strings.ToLower(strings.TrimSpace(codeEmail))
	},
}

var codeInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the outstanding login code for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx, client)

		repo, err := mongodb.NewCodeRepositoryMongo(ctx, db)
		if err != nil {
			return err
		}
		code, err := repo.Get(ctx, codeEmail)
		if errors.Is(err, domain.ErrCodeNotFound) {
			fmt.Printf("No outstanding code for %s\n", codeEmail)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("email:      %s\ncode:       %s\nexpires_at: %s (in %s)\n",
			code.Email, code.Code, code.ExpiresAt.Format(time.RFC3339),
			time.Until(code.ExpiresAt).Round(time.Second))
		return nil
	},
}

var codeIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a fresh login code for an email (support-assisted sign-in)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx, client)

		repo, err := mongodb.NewCodeRepositoryMongo(ctx, db)
		if err != nil {
			return err
		}
		value, err := otp.GenerateNumericCode(otp.DefaultCodeLength)
		if err != nil {
			return err
		}
		code := &domain.OneTimeCode{
			Email:     codeEmail,
			Code:      value,
			ExpiresAt: time.Now().Add(codeTTL),
		}
		if err := repo.Save(ctx, code); err != nil {
			return err
		}
		fmt.Printf("Issued code %s for %s, expires %s\n",
			code.Code, code.Email, code.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var codeRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Invalidate the outstanding login code for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx, client)

		repo, err := mongodb.NewCodeRepositoryMongo(ctx, db)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, codeEmail); err != nil {
			return err
		}
		fmt.Printf("Revoked login code for %s\n", codeEmail)
		return nil
	},
}

func init() {
	codeCmd.PersistentFlags().StringVar(&codeEmail, "email", "", "subject email address (required)")
	_ = codeCmd.MarkPersistentFlagRequired("email")
	codeIssueCmd.Flags().DurationVar(&codeTTL, "ttl", 5*time.Minute, "code time-to-live")

	codeCmd.AddCommand(codeInspectCmd, codeIssueCmd, codeRevokeCmd)
}
