// ga-report queries the Analytics Core Reporting API from the command line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/analytics-tools/ga-reporting-client/pkg/auth"
	"github.com/analytics-tools/ga-reporting-client/pkg/logging"
	"github.com/analytics-tools/ga-reporting-client/pkg/management"
	"github.com/analytics-tools/ga-reporting-client/pkg/query"
	"github.com/analytics-tools/ga-reporting-client/pkg/quota"
	"github.com/analytics-tools/ga-reporting-client/pkg/transport"
)

var (
	configPath string
	cfg        Config
)

func main() {
	root := &cobra.Command{
		Use:   "ga-report",
		Short: "Query the Analytics Core Reporting API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = LoadConfig(configPath)
				if err != nil {
					return err
				}
			} else {
				cfg = DefaultConfig()
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.Logging.Level),
				Pretty: cfg.Logging.Pretty,
				Output: os.Stderr,
			})
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newAccountsCmd())
	root.AddCommand(newWebpropertiesCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newSegmentsCmd())
	root.AddCommand(newAuthorizeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRedisClient connects to Redis when configured, nil otherwise.
func newRedisClient(ctx context.Context) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// tokenStore picks Redis when available, the token file otherwise.
func tokenStore(redisClient *redis.Client) auth.TokenStore {
	if redisClient != nil {
		return auth.NewRedisStore(redisClient, "")
	}
	if cfg.Auth.TokenFile != "" {
		return auth.NewFileStore(cfg.Auth.TokenFile)
	}
	return nil
}

// httpClient builds the authenticated HTTP client from the configured
// credential source.
func httpClient(ctx context.Context, redisClient *redis.Client) (*http.Client, error) {
	if cfg.Auth.ServiceAccountKey != "" {
		keyJSON, err := os.ReadFile(cfg.Auth.ServiceAccountKey)
		if err != nil {
			return nil, fmt.Errorf("read service account key: %w", err)
		}
		return auth.FromServiceAccount(ctx, keyJSON)
	}

	if cfg.Auth.ClientSecrets != "" {
		secretsJSON, err := os.ReadFile(cfg.Auth.ClientSecrets)
		if err != nil {
			return nil, fmt.Errorf("read client secrets: %w", err)
		}
		oauthCfg, err := auth.NewConfig(secretsJSON)
		if err != nil {
			return nil, err
		}
		return auth.ClientFromStore(ctx, oauthCfg, tokenStore(redisClient))
	}

	return nil, fmt.Errorf("no credentials configured: set auth.service_account_key or auth.client_secrets")
}

// apiClient wires the transport with optional quota tracking.
func apiClient(ctx context.Context) (*transport.Client, error) {
	redisClient, err := newRedisClient(ctx)
	if err != nil {
		return nil, err
	}

	httpc, err := httpClient(ctx, redisClient)
	if err != nil {
		return nil, err
	}

	var tracker *quota.Tracker
	if redisClient != nil {
		tracker = quota.NewTracker(redisClient, cfg.DailyLimit, logging.NewLogger("quota"))
	}

	return transport.New(transport.Config{
		HTTPClient: httpc,
		UserAgent:  cfg.UserAgent,
		Quota:      tracker,
	})
}

func newQueryCmd() *cobra.Command {
	var (
		ids        []string
		startDate  string
		endDate    string
		metrics    []string
		dimensions []string
		filters    []string
		sort       []string
		segment    string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a report query and print rows as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("parse --start-date: %w", err)
			}
			end, err := time.Parse("2006-01-02", endDate)
			if err != nil {
				return fmt.Errorf("parse --end-date: %w", err)
			}

			api, err := apiClient(ctx)
			if err != nil {
				return err
			}

			client := query.NewClient(api)
			results, err := client.Get(ctx, query.Spec{
				IDs:        ids,
				StartDate:  start,
				EndDate:    end,
				Metrics:    metrics,
				Dimensions: dimensions,
				Filters:    filters,
				Sort:       sort,
				Segment:    segment,
				MaxResults: maxResults,
			})
			if err != nil {
				return err
			}

			out := json.NewEncoder(os.Stdout)
			for results.Next() {
				row := results.Row()
				if err := out.Encode(map[string]any{
					"dimensions": row.Dimensions,
					"metrics":    row.Metrics,
					"start_date": row.StartDate.Format("2006-01-02"),
					"end_date":   row.EndDate.Format("2006-01-02"),
				}); err != nil {
					return err
				}
			}
			return results.Err()
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "profile ids to query")
	cmd.Flags().StringVar(&startDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&metrics, "metrics", nil, "metrics to report")
	cmd.Flags().StringSliceVar(&dimensions, "dimensions", nil, "dimensions to break down by")
	cmd.Flags().StringSliceVar(&filters, "filters", nil, "filter expressions")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort keys, prefix with - for descending")
	cmd.Flags().StringVar(&segment, "segment", "", "segment expression or gaid::N")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "row cap, 0 for all rows")

	cmd.MarkFlagRequired("ids")
	cmd.MarkFlagRequired("start-date")
	cmd.MarkFlagRequired("end-date")
	cmd.MarkFlagRequired("metrics")

	return cmd
}

func newAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts visible to the credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := apiClient(ctx)
			if err != nil {
				return err
			}

			accounts, err := management.NewClient(api).Accounts(ctx)
			if err != nil {
				return err
			}
			for _, account := range accounts.Items {
				fmt.Printf("%s\t%s\n", account.ID, account.Name)
			}
			return nil
		},
	}
}

func newWebpropertiesCmd() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "webproperties",
		Short: "List web properties under an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := apiClient(ctx)
			if err != nil {
				return err
			}

			properties, err := management.NewClient(api).Webproperties(ctx, accountID)
			if err != nil {
				return err
			}
			for _, property := range properties.Items {
				fmt.Printf("%s\t%s\t%s\n", property.ID, property.Name, property.WebsiteURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id")
	cmd.MarkFlagRequired("account")

	return cmd
}

func newProfilesCmd() *cobra.Command {
	var accountID, webpropertyID string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List profiles (reporting views) under a web property",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := apiClient(ctx)
			if err != nil {
				return err
			}

			profiles, err := management.NewClient(api).Profiles(ctx, accountID, webpropertyID)
			if err != nil {
				return err
			}
			for _, profile := range profiles.Items {
				fmt.Printf("%s\t%s\t%s\n", profile.ID, profile.ViewType, profile.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id")
	cmd.Flags().StringVar(&webpropertyID, "webproperty", "", "web property id")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("webproperty")

	return cmd
}

func newSegmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List segments visible to the credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := apiClient(ctx)
			if err != nil {
				return err
			}

			segments, err := management.NewClient(api).Segments(ctx)
			if err != nil {
				return err
			}
			for _, segment := range segments.Items {
				fmt.Printf("%s\t%s\n", segment.SegmentID, segment.Name)
			}
			return nil
		},
	}
}

func newAuthorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Run the one-time OAuth2 authorization flow and persist the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cfg.Auth.ClientSecrets == "" {
				return fmt.Errorf("authorize needs auth.client_secrets in the config")
			}
			secretsJSON, err := os.ReadFile(cfg.Auth.ClientSecrets)
			if err != nil {
				return fmt.Errorf("read client secrets: %w", err)
			}
			oauthCfg, err := auth.NewConfig(secretsJSON)
			if err != nil {
				return err
			}

			redisClient, err := newRedisClient(ctx)
			if err != nil {
				return err
			}
			store := tokenStore(redisClient)
			if store == nil {
				return fmt.Errorf("configure auth.token_file or redis to persist the token")
			}

			fmt.Printf("Visit the following URL and paste the authorization code:\n\n%s\n\nCode: ",
				oauthCfg.AuthCodeURL("state"))

			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return fmt.Errorf("no authorization code read")
			}

			if _, err := auth.Authorize(ctx, oauthCfg, store, scanner.Text()); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		},
	}
}
