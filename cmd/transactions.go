package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/clierr"
	"github.com/eka-dev/ftracker/pkg/format"
	"github.com/eka-dev/ftracker/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const defaultDeleteWorkers = 3

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List and manage transactions",
	}

	cmd.AddCommand(
		listCmd(a),
		showCmd(a),
		addCmd(a),
		editCmd(a),
		deleteCmd(a),
		exportCmd(a),
	)

	return cmd
}

// resolveView parses the --view flag, falling back to the configured default.
func (a *app) resolveView(flag string) (client.ViewOption, error) {
	if flag == "" {
		flag = a.cfg.Display.DefaultView
	}
	if flag == "" {
		return client.DefaultView, nil
	}
	if err := validation.ValidateView(flag); err != nil {
		return "", validationError(err)
	}
	view, err := client.ParseView(flag)
	if err != nil {
		return "", validationError(err)
	}
	return view, nil
}

// fetchTransactions lists a view from the backend and caches it, or reads
// the cached copy when offline is set.
func (a *app) fetchTransactions(ctx context.Context, view client.ViewOption, offline bool) (client.TransactionResponse, error) {
	if offline {
		rows, err := a.cache.List(ctx, view.String())
		if err != nil {
			return client.TransactionResponse{}, clierr.New(clierr.Internal, "Failed to read the transaction cache", err)
		}
		if len(rows) == 0 {
			return client.TransactionResponse{}, clierr.New(clierr.NotFound,
				fmt.Sprintf("No cached transactions for view %s. Run the command without --offline first.", view), nil)
		}
		return fromCache(rows), nil
	}

	resp, err := a.api.Transactions.List(ctx, view)
	if err != nil {
		return client.TransactionResponse{}, userError(err)
	}
	if err := a.cache.Replace(ctx, view.String(), toCache(resp)); err != nil {
		log.Warn().Err(err).Str("view", view.String()).Msg("Failed to cache transactions")
	}
	return resp, nil
}

func listCmd(a *app) *cobra.Command {
	var viewFlag string
	var offline bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the transactions of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.resolveView(viewFlag)
			if err != nil {
				return err
			}
			resp, err := a.fetchTransactions(cmd.Context(), view, offline)
			if err != nil {
				return err
			}

			if len(resp.Current) == 0 {
				cmd.Println("No transactions found for this period.")
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "ID", "Date", "Type", "Amount", "Description")
			for _, tx := range resp.Current {
				table.Append(transactionRow(tx, format.ServerDay(tx.CreatedAt, a.location())))
			}
			table.Render()

			source := ""
			if offline {
				source = " (cached)"
			}
			cmd.Printf("%d transactions, view: %s%s\n", len(resp.Current), view, source)
			return nil
		},
	}

	cmd.Flags().StringVarP(&viewFlag, "view", "v", "", "Period to list [Day, Week, Month, Year, All]")
	cmd.Flags().BoolVar(&offline, "offline", false, "Show the last fetched copy instead of calling the server")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a single transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateTransactionID(id); err != nil {
				return validationError(err)
			}
			tx, err := a.api.Transactions.Get(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}

			cmd.Println("Transaction:")
			cmd.Printf("ID: %s\n", tx.ID)
			cmd.Printf("Type: %s\n", tx.Type.Label())
			cmd.Printf("Amount: %s\n", format.Currency(tx.Amount))
			cmd.Printf("Description: %s\n", tx.Description)
			cmd.Printf("Date: %s\n", format.ServerDay(tx.CreatedAt, a.location()))
			if updated := format.ServerDay(tx.UpdatedAt, a.location()); updated != "" {
				cmd.Printf("Last updated: %s\n", updated)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "ID of the transaction")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	return cmd
}

// transactionFlags are the editable fields shared by add and edit.
type transactionFlags struct {
	amount      int64
	txType      string
	description string
	date        string
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.amount, "amount", "a", 0, "Amount in rupiah")
	cmd.Flags().StringVarP(&f.txType, "type", "t", "", "Transaction type [income, expense]")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&f.date, "date", "", "Date as dd/mm/yyyy (defaults to today)")
}

// input validates the flags and builds the request payload.
func (f *transactionFlags) input() (client.TransactionInput, error) {
	if err := validation.ValidateAmount(f.amount); err != nil {
		return client.TransactionInput{}, validationError(err)
	}
	if err := validation.ValidateTransactionType(f.txType); err != nil {
		return client.TransactionInput{}, validationError(err)
	}
	if err := validation.ValidateNonEmptyString("description", f.description); err != nil {
		return client.TransactionInput{}, validationError(err)
	}
	if err := validation.ValidateDate(f.date); err != nil {
		return client.TransactionInput{}, validationError(err)
	}

	txType, err := client.ParseTransactionType(f.txType)
	if err != nil {
		return client.TransactionInput{}, validationError(err)
	}
	createdAt, err := format.ParseInputDate(f.date)
	if err != nil {
		return client.TransactionInput{}, validationError(err)
	}
	return client.TransactionInput{
		Amount:      f.amount,
		Type:        txType,
		Description: f.description,
		CreatedAt:   createdAt,
	}, nil
}

func addCmd(a *app) *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.date == "" {
				flags.date = a.now().In(a.location()).Format(validation.DateLayout)
			}
			in, err := flags.input()
			if err != nil {
				return err
			}
			message, err := a.api.Transactions.Create(cmd.Context(), in)
			if err != nil {
				return userError(err)
			}
			cmd.Println(message)
			return nil
		},
	}

	flags.register(cmd)
	for _, name := range []string{"amount", "type", "description"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Error().Err(err).Msgf("Failed to mark '%s' flag as required", name)
		}
	}
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var id string
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change an existing transaction",
		Long:  "Change an existing transaction. Fields that are not passed keep their current value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateTransactionID(id); err != nil {
				return validationError(err)
			}
			changed := cmd.Flags().Changed
			if !changed("amount") && !changed("type") && !changed("description") && !changed("date") {
				return clierr.New(clierr.Validation, "Nothing to change: pass at least one of --amount, --type, --description or --date.", nil)
			}

			current, err := a.api.Transactions.Get(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}
			if err := flags.fillFrom(current, changed, a.location()); err != nil {
				return err
			}

			in, err := flags.input()
			if err != nil {
				return err
			}
			message, err := a.api.Transactions.Update(cmd.Context(), id, in)
			if err != nil {
				return userError(err)
			}
			cmd.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "ID of the transaction")
	flags.register(cmd)
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	return cmd
}

// fillFrom copies the fields of tx whose flags were not passed.
func (f *transactionFlags) fillFrom(tx client.Transaction, changed func(string) bool, loc *time.Location) error {
	if !changed("amount") {
		f.amount = tx.Amount
	}
	if !changed("type") {
		f.txType = tx.Type.Label()
	}
	if !changed("description") {
		f.description = tx.Description
	}
	if !changed("date") {
		created, err := format.ParseServerTime(tx.CreatedAt)
		if err != nil {
			return clierr.New(clierr.Validation, "The stored date cannot be read; pass --date explicitly.", err)
		}
		f.date = created.In(loc).Format(validation.DateLayout)
	}
	return nil
}

func deleteCmd(a *app) *cobra.Command {
	var ids []string
	var workers int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one or more transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range ids {
				if err := validation.ValidateTransactionID(id); err != nil {
					return validationError(err)
				}
			}
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return validationError(err)
			}

			if len(ids) == 1 {
				message, err := a.api.Transactions.Delete(cmd.Context(), ids[0])
				if err != nil {
					return userError(err)
				}
				cmd.Println(message)
				return nil
			}
			return a.deleteMany(cmd, ids, workers)
		},
	}

	cmd.Flags().StringSliceVarP(&ids, "id", "i", nil, "ID of a transaction to delete (repeatable)")
	cmd.Flags().IntVarP(&workers, "workers", "w", defaultDeleteWorkers,
		fmt.Sprintf("Number of concurrent requests [%d-%d]", validation.MinWorkers, validation.MaxWorkers))
	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}
	return cmd
}

func (a *app) deleteMany(cmd *cobra.Command, ids []string, workers int) error {
	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Deleting transactions..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	ctx := cmd.Context()
	var mu sync.Mutex
	failed := make(map[string]error)
	a.api.Transactions.DeleteMany(ctx, ids, workers, func(id string, err error) {
		if err != nil {
			mu.Lock()
			failed[id] = err
			mu.Unlock()
		}
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	if ctx.Err() != nil {
		return clierr.New(clierr.Internal, "Deletion was interrupted", ctx.Err())
	}

	var firstErr error
	deleted := 0
	for _, id := range ids {
		err, ok := failed[id]
		if !ok {
			deleted++
			continue
		}
		mapped := userError(err)
		if firstErr == nil {
			firstErr = mapped
		}
		cmd.PrintErrf("Failed to delete %s: %s\n", id, mapped)
	}
	cmd.Printf("Deleted %d of %d transactions.\n", deleted, len(ids))
	return firstErr
}
