package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	baseURL string
	actor   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "coreledger-cli",
		Short:         "coreledger CLI tool",
		Long:          `A command line interface for interacting with the coreledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the coreledger API")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", "cli", "Actor recorded on postings")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		productsCmd(opts),
		balanceCmd(opts),
		journalCmd(opts),
		postingCmd(opts, "credit"),
		postingCmd(opts, "debit"),
		accrualsCmd(opts),
		feesCmd(opts),
		reconcileCmd(opts),
	)

	return rootCmd
}

func (o *cliOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.actor, o.timeout)
}

// printJSON pretty-prints a raw JSON response.
func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func request(cmd *cobra.Command, opts *cliOptions, method, path string, query url.Values, body any) error {
	raw, err := opts.client().do(cmd.Context(), method, path, query, body)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), raw)
}

func pagination(cmd *cobra.Command) url.Values {
	q := url.Values{}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset, _ := cmd.Flags().GetInt("offset"); offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

func addPagination(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "Maximum number of items")
	cmd.Flags().Int("offset", 0, "Items to skip")
}

func accountsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/accounts/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pagination(cmd)
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				q.Set("status", status)
			}
			return request(cmd, opts, http.MethodGet, "/accounts", q, nil)
		},
	}
	listCmd.Flags().String("status", "", "Filter by status (Active, Frozen, Dormant, Closed)")
	addPagination(listCmd)

	var open struct {
		CustomerID     string `json:"customer_id"`
		ProductID      string `json:"product_id"`
		OpeningBalance string `json:"opening_balance,omitempty"`
		OpeningDate    string `json:"opening_date,omitempty"`
	}
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/accounts", nil, open)
		},
	}
	openCmd.Flags().StringVar(&open.CustomerID, "customer", "", "Customer ID")
	openCmd.Flags().StringVar(&open.ProductID, "product", "", "Product ID")
	openCmd.Flags().StringVar(&open.OpeningBalance, "balance", "", "Opening balance")
	openCmd.Flags().StringVar(&open.OpeningDate, "date", "", "Opening date (YYYY-MM-DD)")
	openCmd.MarkFlagRequired("customer")
	openCmd.MarkFlagRequired("product")

	statusCmd := &cobra.Command{
		Use:   "status <account-id> <Active|Frozen|Dormant|Closed>",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/accounts/"+url.PathEscape(args[0])+"/status", nil,
				map[string]string{"status": args[1]})
		},
	}

	cmd.AddCommand(getCmd, listCmd, openCmd, statusCmd)
	return cmd
}

func productsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Product operations",
	}

	var create struct {
		Code           string `json:"code"`
		Name           string `json:"name,omitempty"`
		Currency       string `json:"currency"`
		Rate           string `json:"annual_interest_rate,omitempty"`
		MinimumBalance string `json:"minimum_balance_for_interest,omitempty"`
		MaintenanceFee string `json:"monthly_maintenance_fee,omitempty"`
		OverdraftLimit string `json:"overdraft_limit,omitempty"`
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/products", nil, create)
		},
	}
	createCmd.Flags().StringVar(&create.Code, "code", "", "Product code")
	createCmd.Flags().StringVar(&create.Name, "name", "", "Product name")
	createCmd.Flags().StringVar(&create.Currency, "currency", "", "ISO 4217 currency")
	createCmd.Flags().StringVar(&create.Rate, "rate", "", "Annual interest rate as a fraction (0.06)")
	createCmd.Flags().StringVar(&create.MinimumBalance, "min-balance", "", "Minimum balance for interest")
	createCmd.Flags().StringVar(&create.MaintenanceFee, "fee", "", "Monthly maintenance fee")
	createCmd.Flags().StringVar(&create.OverdraftLimit, "overdraft", "", "Overdraft limit")
	createCmd.MarkFlagRequired("code")
	createCmd.MarkFlagRequired("currency")

	getCmd := &cobra.Command{
		Use:   "get <product-id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/products/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd)
	return cmd
}

func balanceCmd(opts *cliOptions) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if asOf != "" {
				q.Set("as_of", asOf)
			}
			return request(cmd, opts, http.MethodGet, "/accounts/"+url.PathEscape(args[0])+"/balance", q, nil)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Balance at the end of this value date (YYYY-MM-DD)")
	return cmd
}

func journalCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal <account-id>",
		Short: "List an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodGet, "/accounts/"+url.PathEscape(args[0])+"/transactions", pagination(cmd), nil)
		},
	}
	addPagination(cmd)
	return cmd
}

func postingCmd(opts *cliOptions, direction string) *cobra.Command {
	var body struct {
		Amount      string `json:"amount"`
		Currency    string `json:"currency,omitempty"`
		Category    string `json:"category,omitempty"`
		Description string `json:"description,omitempty"`
		Reference   string `json:"reference,omitempty"`
		ValueDate   string `json:"value_date,omitempty"`
	}
	cmd := &cobra.Command{
		Use:   direction + " <account-id> <amount>",
		Short: "Post a " + direction + " to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body.Amount = args[1]
			return request(cmd, opts, http.MethodPost, "/accounts/"+url.PathEscape(args[0])+"/"+direction, nil, body)
		},
	}
	cmd.Flags().StringVar(&body.Currency, "currency", "", "Currency; must match the account")
	cmd.Flags().StringVar(&body.Category, "category", "", "Transaction category")
	cmd.Flags().StringVar(&body.Description, "description", "", "Description")
	cmd.Flags().StringVar(&body.Reference, "reference", "", "External reference")
	cmd.Flags().StringVar(&body.ValueDate, "value-date", "", "Value date (YYYY-MM-DD)")
	return cmd
}

func accrualsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accruals",
		Short: "Monthly interest accruals",
	}

	var run struct {
		AsOf   string `json:"as_of,omitempty"`
		DryRun bool   `json:"dry_run"`
	}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monthly accrual batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/batch/monthly-accruals", nil, run)
		},
	}
	runCmd.Flags().StringVar(&run.AsOf, "as-of", "", "Processing date (YYYY-MM-DD), default today")
	runCmd.Flags().BoolVar(&run.DryRun, "dry-run", false, "Compute without posting")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded accruals",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pagination(cmd)
			if account, _ := cmd.Flags().GetString("account"); account != "" {
				q.Set("account_id", account)
			}
			if status, _ := cmd.Flags().GetString("status"); status != "" {
				q.Set("status", status)
			}
			return request(cmd, opts, http.MethodGet, "/batch/accrual-history", q, nil)
		},
	}
	historyCmd.Flags().String("account", "", "Filter by account ID")
	historyCmd.Flags().String("status", "", "Filter by status (Posted, Skipped, Failed)")
	addPagination(historyCmd)

	cmd.AddCommand(runCmd, historyCmd)
	return cmd
}

func feesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Monthly maintenance fees",
	}

	var run struct {
		AsOf string `json:"as_of,omitempty"`
	}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Charge maintenance fees for the last completed month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, opts, http.MethodPost, "/batch/monthly-fees", nil, run)
		},
	}
	runCmd.Flags().StringVar(&run.AsOf, "as-of", "", "Processing date (YYYY-MM-DD), default today")

	cmd.AddCommand(runCmd)
	return cmd
}

func reconcileCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Check journals against stored balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/ledger/reconciliation"
			if len(args) == 1 {
				path = "/accounts/" + url.PathEscape(args[0]) + "/reconciliation"
			}
			raw, err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, nil)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), raw); err != nil {
				return err
			}

			var result struct {
				IsReconciled  *bool             `json:"is_reconciled"`
				Discrepancies []json.RawMessage `json:"discrepancies"`
			}
			if err := json.Unmarshal(raw, &result); err != nil {
				return err
			}
			if len(result.Discrepancies) > 0 || (result.IsReconciled != nil && !*result.IsReconciled) {
				return fmt.Errorf("reconciliation FAILED")
			}
			return nil
		},
	}
}
