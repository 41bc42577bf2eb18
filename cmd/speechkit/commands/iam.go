package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocalhq/speechkit/pkg/cli"
	"github.com/vocalhq/speechkit/pkg/speechkit"
)

var iamCmd = &cobra.Command{
	Use:   "iam",
	Short: "IAM credential operations",
	Long:  `Exchange, issue and inspect IAM credentials for the current context.`,
}

var iamTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a fresh IAM token",
	Long: `Exchange the context's OAuth token or service-account key for an
IAM token and print it. Api-Key contexts have nothing to exchange.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		auth := cliCtx.Auth
		if auth == nil {
			return fmt.Errorf("credentials not configured, run: speechkit config add-context")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var req speechkit.TokenRequest
		switch {
		case auth.OAuthToken != "":
			req.OAuthToken = auth.OAuthToken
		case auth.ServiceAccountID != "":
			pemBytes, err := os.ReadFile(auth.PrivateKeyFile)
			if err != nil {
				return fmt.Errorf("read private key: %w", err)
			}
			req.JWT, err = speechkit.GenerateJWT(auth.ServiceAccountID, auth.KeyID, pemBytes, 0)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("context %q has no exchangeable credential (api-key sessions do not use IAM tokens)", cliCtx.Name)
		}

		token, err := speechkit.IAMToken(reqCtx, req)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var iamAPIKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Issue an Api-Key for a service account",
	Long: `Issue a long-lived Api-Key for a service account. Needs the
context's OAuth token; the secret is printed once and can not be
retrieved again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		if cliCtx.Auth == nil || cliCtx.Auth.OAuthToken == "" {
			return fmt.Errorf("issuing an api-key needs an oauth_token in the context")
		}

		saID, _ := cmd.Flags().GetString("sa-id")
		description, _ := cmd.Flags().GetString("description")
		save, _ := cmd.Flags().GetBool("save")
		if saID == "" {
			saID = cliCtx.Auth.ServiceAccountID
		}
		if saID == "" {
			return fmt.Errorf("pass --sa-id or configure a service account in the context")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		secret, err := speechkit.APIKeyForAccount(reqCtx, cliCtx.Auth.OAuthToken, saID, description)
		if err != nil {
			return err
		}

		if save {
			cliCtx.Auth.APIKey = secret
			if err := globalConfig.Save(); err != nil {
				return err
			}
			cli.PrintSuccess("api-key saved into context %q", cliCtx.Name)
			return nil
		}
		fmt.Println(secret)
		return nil
	},
}

var iamAWSKeyCmd = &cobra.Command{
	Use:   "aws-key",
	Short: "Issue S3-compatible static credentials",
	Long: `Issue an AWS-compatible static access key for a service account,
for use with the object storage that stages long-audio uploads. With
--save the key pair is written into the context's storage settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		saID, _ := cmd.Flags().GetString("sa-id")
		description, _ := cmd.Flags().GetString("description")
		save, _ := cmd.Flags().GetBool("save")
		if saID == "" && cliCtx.Auth != nil {
			saID = cliCtx.Auth.ServiceAccountID
		}
		if saID == "" {
			return fmt.Errorf("pass --sa-id or configure a service account in the context")
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		session, err := createSession(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		creds, err := speechkit.AWSAccessKey(reqCtx, session, saID, description)
		if err != nil {
			return err
		}

		if save {
			if cliCtx.Storage == nil {
				cliCtx.Storage = &cli.StorageConfig{}
			}
			cliCtx.Storage.AccessKeyID = creds.AccessKeyID
			cliCtx.Storage.SecretAccessKey = creds.SecretAccessKey
			if err := globalConfig.Save(); err != nil {
				return err
			}
			cli.PrintSuccess("storage credentials saved into context %q", cliCtx.Name)
			return nil
		}

		fmt.Printf("access_key_id: %s\nsecret_access_key: %s\n", creds.AccessKeyID, creds.SecretAccessKey)
		return nil
	},
}

var iamServiceAccountsCmd = &cobra.Command{
	Use:   "service-accounts",
	Short: "List service accounts in the context's folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		session, err := createSession(reqCtx, cliCtx)
		if err != nil {
			return err
		}

		accounts, err := speechkit.ListServiceAccounts(reqCtx, session)
		if err != nil {
			return err
		}

		if outputJSON || outputFile != "" {
			return outputResult(accounts)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, sa := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", sa.ID, sa.Name, sa.CreatedAt)
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{iamAPIKeyCmd, iamAWSKeyCmd} {
		c.Flags().String("sa-id", "", "service account id")
		c.Flags().String("description", "", "key description")
		c.Flags().Bool("save", false, "save the issued credential into the context")
	}
	iamCmd.AddCommand(iamTokenCmd, iamAPIKeyCmd, iamAWSKeyCmd, iamServiceAccountsCmd)
}
