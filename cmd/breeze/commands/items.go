package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item", "i"},
		Short:   "Manage items",
		Long:    "Create, read, update, delete and list items of the configured resource",
	}

	cmd.AddCommand(newItemsCreateCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsUpdateCommand())
	cmd.AddCommand(newItemsDeleteCommand())
	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsBatchDeleteCommand())

	return cmd
}

// withSession runs fn against a freshly configured client.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(cmd.Context(), s)
}

func newItemsCreateCommand() *cobra.Command {
	var (
		data        string
		file        string
		generateKey bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Long:  "Create an item from a JSON object given with --data or --file",
		Example: `  breeze items create --data '{"key":"n1","text":"hello"}'
  breeze items create --file note.json --generate-key`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(data, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if generateKey && doc.Key() == "" {
				doc[constants.DocumentKeyField] = uuid.New().String()
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				created, err := s.client.Create(ctx, s.token, doc)
				if err != nil {
					return fmt.Errorf("failed to create item: %w", err)
				}

				return renderWithFormat(cmd.OutOrStdout(), created)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "item as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the item JSON (- for stdin)")
	cmd.Flags().BoolVar(&generateKey, "generate-key", false, "assign a random UUID key when the item has none")

	return cmd
}

func newItemsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get an item",
		Long:  "Display a single item by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				doc, err := s.client.Read(ctx, s.token, args[0])
				if err != nil {
					return fmt.Errorf("failed to get item '%s': %w", args[0], err)
				}

				return renderWithFormat(cmd.OutOrStdout(), doc)
			})
		},
	}
}

func newItemsUpdateCommand() *cobra.Command {
	var (
		data string
		file string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an item",
		Long:  "Replace an item with the JSON object given with --data or --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(data, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if doc.Key() == "" {
				return constants.ErrItemKeyRequired
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				updated, err := s.client.Update(ctx, s.token, doc)
				if err != nil {
					return fmt.Errorf("failed to update item '%s': %w", doc.Key(), err)
				}

				return renderWithFormat(cmd.OutOrStdout(), updated)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "item as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the item JSON (- for stdin)")

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	var (
		createdAt string
		updatedAt string
	)

	cmd := &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete an item",
		Long:  "Delete an item by key. The item's createdAt and updatedAt values must be supplied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if createdAt == "" || updatedAt == "" {
				return constants.ErrTimestampsNeeded
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				err := s.client.Delete(ctx, s.token, args[0], createdAt, updatedAt)
				if err != nil {
					return fmt.Errorf("failed to delete item '%s': %w", args[0], err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Item '%s' deleted\n", args[0])

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&createdAt, "created-at", "", "the item's createdAt value")
	cmd.Flags().StringVar(&updatedAt, "updated-at", "", "the item's updatedAt value")

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var (
		limit    int
		startKey string
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Long:  "List one page of items, or every item with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					docs []Document
					err  error
				)

				if allPages {
					pageSize := limit
					if pageSize <= 0 {
						pageSize = constants.DefaultPageSize
					}

					docs, err = breeze.NewPaginator[Document](ctx, s.client, s.token, pageSize, startKey).All()
				} else {
					docs, err = s.client.List(ctx, s.token, &breeze.ListParams{ExclusiveStartKey: startKey, Limit: limit})
				}

				if err != nil {
					return fmt.Errorf("failed to list items: %w", err)
				}

				format, err := outputFormat()
				if err != nil {
					return err
				}

				return renderDocuments(cmd.OutOrStdout(), format, docs)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of items per page")
	cmd.Flags().StringVar(&startKey, "start-key", "", "list items after this key")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch every page")

	return cmd
}

func newItemsBatchDeleteCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch-delete KEY...",
		Short: "Delete several items concurrently",
		Long:  "Delete several items concurrently. Each item is read first and deleted with its own createdAt and updatedAt values",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return constants.ErrKeysRequired
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				executor := breeze.NewBatchExecutor(s.client, s.token, concurrency)

				results, err := batchDelete(ctx, executor, args)
				if err != nil {
					return fmt.Errorf("batch delete interrupted: %w", err)
				}

				return renderBatchResults(cmd.OutOrStdout(), results)
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "maximum concurrent requests")

	return cmd
}

// batchDelete reads every key, then deletes each item that was found using
// its stored timestamps. Results follow the order of keys.
func batchDelete(ctx context.Context, executor *breeze.BatchExecutor[Document], keys []string) ([]breeze.BatchResult[Document], error) {
	reads := make([]breeze.BatchOperation[Document], 0, len(keys))
	for _, key := range keys {
		reads = append(reads, breeze.BatchOperation[Document]{ID: key, Type: breeze.OperationRead, Key: key})
	}

	results, err := executor.Execute(ctx, reads)
	if err != nil {
		return results, err
	}

	deletes := make([]breeze.BatchOperation[Document], 0, len(results))
	positions := make([]int, 0, len(results))

	for i, result := range results {
		if !result.Success {
			continue
		}

		createdAt, _ := result.Item[constants.CreatedAtField].(string)
		updatedAt, _ := result.Item[constants.UpdatedAtField].(string)

		if createdAt == "" || updatedAt == "" {
			results[i].Success = false
			results[i].Error = constants.ErrItemTimestamps

			continue
		}

		deletes = append(deletes, breeze.BatchOperation[Document]{
			ID:   result.ID,
			Type: breeze.OperationDelete,
			Key:  keys[i],
			Query: breeze.QueryItems{
				{Name: constants.CreatedAtField, Value: createdAt},
				{Name: constants.UpdatedAtField, Value: updatedAt},
			},
		})
		positions = append(positions, i)
	}

	deleted, err := executor.Execute(ctx, deletes)

	for j, result := range deleted {
		i := positions[j]
		result.Duration += results[i].Duration
		results[i] = result
	}

	return results, err
}

func renderWithFormat(out io.Writer, doc Document) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	return renderDocument(out, format, doc)
}

func renderBatchResults(out io.Writer, results []breeze.BatchResult[Document]) error {
	failed := 0

	table := tablewriter.NewWriter(out)
	table.Header("Key", "Status", "Duration", "Error")

	for _, result := range results {
		status, message := "ok", ""
		if !result.Success {
			failed++
			status = "failed"

			if result.Error != nil {
				message = truncate(result.Error.Error(), constants.StringTruncationLength)
			}
		}

		_ = table.Append([]string{result.ID, status, result.Duration.Round(time.Millisecond).String(), message})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", constants.ErrBatchFailed, failed, len(results))
	}

	return nil
}
