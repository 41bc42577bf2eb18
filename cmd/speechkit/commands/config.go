package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple cloud folder configurations,
similar to kubectl's context management.

Configuration is stored in ~/.speechkit/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Exactly one credential shape is needed:
  - Api-Key:          --api-key
  - OAuth token:      --oauth-token
  - Service account:  --sa-id, --key-id and --private-key-file

Object storage settings (--bucket, --s3-access-key, --s3-secret-key)
are only needed for long-audio transcription.

Example:
  # Api-Key context
  speechkit config add-context myctx --api-key YOUR_KEY --folder-id b1gfolder

  # Service-account context with staging storage
  speechkit config add-context prod \
    --sa-id ajeabc --key-id ajekey --private-key-file ~/.keys/sa.pem \
    --folder-id b1gfolder \
    --bucket audio-staging --s3-access-key AKID --s3-secret-key SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		flags := cmd.Flags()

		apiKey, _ := flags.GetString("api-key")
		oauthToken, _ := flags.GetString("oauth-token")
		saID, _ := flags.GetString("sa-id")
		keyID, _ := flags.GetString("key-id")
		privateKeyFile, _ := flags.GetString("private-key-file")

		if apiKey == "" && oauthToken == "" && saID == "" {
			return fmt.Errorf("one of --api-key, --oauth-token or --sa-id is required")
		}
		if saID != "" && (keyID == "" || privateKeyFile == "") {
			return fmt.Errorf("--sa-id requires --key-id and --private-key-file")
		}

		folderID, _ := flags.GetString("folder-id")
		defaultVoice, _ := flags.GetString("default-voice")
		timeout, _ := flags.GetInt("timeout")

		ctx := &cli.Context{
			Auth: &cli.AuthConfig{
				APIKey:           apiKey,
				OAuthToken:       oauthToken,
				ServiceAccountID: saID,
				KeyID:            keyID,
				PrivateKeyFile:   privateKeyFile,
			},
			FolderID:     folderID,
			DefaultVoice: defaultVoice,
			Timeout:      timeout,
		}

		bucket, _ := flags.GetString("bucket")
		s3Endpoint, _ := flags.GetString("s3-endpoint")
		s3Region, _ := flags.GetString("s3-region")
		s3AccessKey, _ := flags.GetString("s3-access-key")
		s3SecretKey, _ := flags.GetString("s3-secret-key")
		if bucket != "" || s3AccessKey != "" {
			ctx.Storage = &cli.StorageConfig{
				Bucket:          bucket,
				Endpoint:        s3Endpoint,
				Region:          s3Region,
				AccessKeyID:     s3AccessKey,
				SecretAccessKey: s3SecretKey,
			}
		}

		if err := globalConfig.AddContext(name, ctx); err != nil {
			return err
		}

		// First context becomes current automatically.
		if globalConfig.CurrentContext == "" {
			if err := globalConfig.UseContext(name); err != nil {
				return err
			}
		}

		cli.PrintSuccess("Context %q added", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context [name]",
	Short: "Show a context (current if no name given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		ctx, err := globalConfig.ResolveContext(name)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", ctx.Name)
		if ctx.Auth != nil {
			if ctx.Auth.APIKey != "" {
				fmt.Fprintf(w, "Api-Key:\t%s\n", cli.MaskSecret(ctx.Auth.APIKey))
			}
			if ctx.Auth.OAuthToken != "" {
				fmt.Fprintf(w, "OAuth token:\t%s\n", cli.MaskSecret(ctx.Auth.OAuthToken))
			}
			if ctx.Auth.ServiceAccountID != "" {
				fmt.Fprintf(w, "Service account:\t%s\n", ctx.Auth.ServiceAccountID)
				fmt.Fprintf(w, "Key ID:\t%s\n", ctx.Auth.KeyID)
				fmt.Fprintf(w, "Private key:\t%s\n", ctx.Auth.PrivateKeyFile)
			}
		}
		if ctx.FolderID != "" {
			fmt.Fprintf(w, "Folder:\t%s\n", ctx.FolderID)
		}
		if ctx.Storage != nil {
			fmt.Fprintf(w, "Bucket:\t%s\n", ctx.Storage.Bucket)
			if ctx.Storage.AccessKeyID != "" {
				fmt.Fprintf(w, "S3 key:\t%s\n", cli.MaskSecret(ctx.Storage.AccessKeyID))
			}
		}
		if ctx.DefaultVoice != "" {
			fmt.Fprintf(w, "Default voice:\t%s\n", ctx.DefaultVoice)
		}
		return w.Flush()
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := globalConfig.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured. Add one with 'speechkit config add-context'.")
			return nil
		}
		for _, name := range names {
			marker := "  "
			if name == globalConfig.CurrentContext {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(globalConfig.Path())
		return nil
	},
}

func init() {
	flags := configAddContextCmd.Flags()
	flags.String("api-key", "", "service-account Api-Key")
	flags.String("oauth-token", "", "Yandex account OAuth token")
	flags.String("sa-id", "", "service account ID (for JWT exchange)")
	flags.String("key-id", "", "authorized key ID (for JWT exchange)")
	flags.String("private-key-file", "", "PEM private key file (for JWT exchange)")
	flags.String("folder-id", "", "cloud folder ID")
	flags.String("default-voice", "", "default synthesis voice")
	flags.Int("timeout", 0, "request timeout in seconds")
	flags.String("bucket", "", "object storage bucket for long-audio staging")
	flags.String("s3-endpoint", "", "object storage endpoint (default "+defaultStorageEndpoint+")")
	flags.String("s3-region", "", "object storage region (default "+defaultStorageRegion+")")
	flags.String("s3-access-key", "", "static AWS-compatible access key ID")
	flags.String("s3-secret-key", "", "static AWS-compatible secret key")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
