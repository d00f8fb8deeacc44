package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/bankcore/internal/adapter/http/dto"
)

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var accountType, initialBalance string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{
				AccountType:    accountType,
				InitialBalance: initialBalance,
			}, &account)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &account, func(w io.Writer) {
				printAccounts(w, []*dto.AccountResponse{&account})
			})
		},
	}
	createCmd.Flags().StringVar(&accountType, "type", "Checking", "Account type (Savings or Checking)")
	createCmd.Flags().StringVar(&initialBalance, "initial-balance", "", "Opening balance, defaults to the server setting")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list dto.ListAccountsResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/", nil, &list); err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &list, func(w io.Writer) {
				printAccounts(w, list.Accounts)
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &account); err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &account, func(w io.Writer) {
				printAccounts(w, []*dto.AccountResponse{&account})
			})
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the committed balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance dto.BalanceResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance"
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &balance); err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &balance, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", balance.Number, balance.Balance)
			})
		},
	}

	cmd.AddCommand(createCmd, listCmd, getCmd, balanceCmd)
	return cmd
}

func movementCmd(opts *options, use, short, resource string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   use + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tx dto.TransactionResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/" + resource
			err := opts.client().do(cmd.Context(), http.MethodPost, path, dto.MovementRequest{
				Amount:      args[1],
				Description: description,
			}, &tx)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &tx, func(w io.Writer) {
				printTransaction(w, &tx)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Free text stored with the transaction")

	return cmd
}

func depositCmd(opts *options) *cobra.Command {
	return movementCmd(opts, "deposit", "Deposit money into an account", "deposits")
}

func withdrawCmd(opts *options) *cobra.Command {
	return movementCmd(opts, "withdraw", "Withdraw money from an account", "withdrawals")
}

func transferCmd(opts *options) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "transfer <from-number> <to-number> <amount>",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tx dto.TransactionResponse
			err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/transfers", dto.CreateTransferRequest{
				FromAccountNumber: args[0],
				ToAccountNumber:   args[1],
				Amount:            args[2],
				Description:       description,
			}, &tx)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &tx, func(w io.Writer) {
				printTransaction(w, &tx)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Free text stored with the transaction")

	return cmd
}

func historyCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the history of all your accounts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/history"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var history dto.HistoryResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &history); err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts, &history, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tWHEN\tKIND\tDIR\tFROM\tTO\tAMOUNT\tDESCRIPTION")
				for _, e := range history.Entries {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						e.ID,
						e.CommittedAt.Format("2006-01-02 15:04:05"),
						e.Kind,
						e.Direction,
						dash(e.FromAccountNumber),
						dash(e.ToAccountNumber),
						e.Amount,
						truncate(e.Description, 40),
					)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries")

	return cmd
}

// errCheckFailed marks a ledger check that ran but did not pass.
var errCheckFailed = errors.New("check failed")

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ConsistencyResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &report)
			if err != nil && report.Status == "" {
				return err
			}

			if renderErr := render(cmd.OutOrStdout(), opts, &report, func(w io.Writer) {
				verdict := "PASSED"
				if !report.Consistent {
					verdict = "FAILED"
				}
				fmt.Fprintf(w, "Consistency check %s\n", verdict)
				fmt.Fprintf(w, "Total balance:     %s\n", report.TotalBalance)
				fmt.Fprintf(w, "Total deposits:    %s\n", report.TotalDeposits)
				fmt.Fprintf(w, "Total withdrawals: %s\n", report.TotalWithdrawals)
				fmt.Fprintf(w, "Difference:        %s\n", report.Difference)
				fmt.Fprintf(w, "Accounts: %d  Transactions: %d\n", report.Accounts, report.Transactions)
			}); renderErr != nil {
				return renderErr
			}

			if !report.Consistent {
				return fmt.Errorf("consistency %w", errCheckFailed)
			}
			return nil
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every balance from its ledger records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationResponse
			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report)
			if err != nil && report.CheckedAt.IsZero() {
				return err
			}

			if renderErr := render(cmd.OutOrStdout(), opts, &report, func(w io.Writer) {
				fmt.Fprintf(w, "Reconciled %d of %d accounts\n", report.ReconciledAccounts, report.TotalAccounts)
				if len(report.Discrepancies) == 0 {
					return
				}

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NUMBER\tRECORDED\tCALCULATED\tDIFFERENCE")
				for _, d := range report.Discrepancies {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.AccountNumber, d.RecordedBalance, d.CalculatedBalance, d.Difference)
				}
				tw.Flush()
			}); renderErr != nil {
				return renderErr
			}

			if len(report.Discrepancies) > 0 || !report.LedgerConsistent {
				return fmt.Errorf("reconciliation %w", errCheckFailed)
			}
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd, reconcileCmd)
	return cmd
}

func render(w io.Writer, opts *options, v any, human func(io.Writer)) error {
	if opts.jsonOutput {
		return printJSON(w, v)
	}

	human(w)
	return nil
}

func printAccounts(w io.Writer, accounts []*dto.AccountResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tTYPE\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Number, a.AccountType, a.Balance)
	}
	tw.Flush()
}

func printTransaction(w io.Writer, tx *dto.TransactionResponse) {
	fmt.Fprintf(w, "Transaction %d committed: %s %s (%s)\n", tx.ID, tx.Kind, tx.Amount, tx.Description)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
