package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/baliciaga/passwordless/mongodb"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	mongoURI string
	dbName   string
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "authctl inspects and repairs passwordless login state",
	Long: `A command-line tool for operating the passwordless auth service:
inspecting outstanding login codes, issuing or revoking them, and looking up
user registry records when a sign-in incident needs diagnosing.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017/passwordless_dev", "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&dbName, "db", "passwordless_dev", "MongoDB database name")

	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(userCmd)
}

// connect dials Mongo for a single command invocation.
func connect(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	return mongodb.Connect(ctx, mongoURI, dbName)
}
