package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llamasql/llamasql/internal/agent"
	"github.com/llamasql/llamasql/internal/config"
	"github.com/llamasql/llamasql/internal/payload"
	"github.com/llamasql/llamasql/internal/schema"
	"github.com/llamasql/llamasql/internal/store"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the database a question in plain English",
	Long: `Ask the database a question in plain English.

The question is sent to a running llamasql server, translated to SQL by the
language model, executed, and rendered as a table, a single value, or an
error.

Examples:
  llamasql ask "How many patients are there?"
  llamasql ask "Which doctors have open admissions?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{
			"messages": []agent.Message{{Role: "human", Content: args[0]}},
		}
		resp, err := client.post(cmd.Context(), "/chat", req)
		if err != nil {
			return err
		}

		var reply agent.Message
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		var p payload.Payload
		if err := json.Unmarshal([]byte(reply.Content), &p); err != nil {
			// Not a payload; print whatever the model said.
			fmt.Println(reply.Content)
			return nil
		}
		renderPayload(p)
		return nil
	},
}

// --- query ---

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run SQL directly against a local seeded database",
	Long: `Run SQL directly against a local seeded database, bypassing the
language model entirely. Useful for inspecting the demo data and for
debugging queries the model produced.

Example:
  llamasql query 'SELECT "first_name", "city" FROM "patients" LIMIT 5'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Store.DataDir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Seed(ctx); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		st.SetReadOnly(cfg.Store.ReadOnly)

		raw := st.Execute(ctx, args[0])
		renderPayload(payload.Normalize(args[0], raw))
		return nil
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(schema.DDL())
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// renderPayload prints a result payload for the terminal: an error panel, a
// single value, or a column-aligned table.
func renderPayload(p payload.Payload) {
	if !p.OK {
		printError("Query failed: %s", p.Error)
		if p.SQL != "" {
			printStatus("SQL", "%s", p.SQL)
		}
		return
	}

	printStatus("SQL", "%s", p.SQL)

	if p.HasScalar {
		if p.Scalar == nil {
			fmt.Println("null")
		} else {
			fmt.Printf("%v\n", p.Scalar)
		}
		return
	}

	if len(p.Rows) == 0 {
		fmt.Println("No rows returned.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for pair := p.Rows[0].Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(w, "%s\t", pair.Key)
	}
	fmt.Fprintln(w)
	for _, row := range p.Rows {
		for pair := row.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == nil {
				fmt.Fprint(w, "\t")
			} else {
				fmt.Fprintf(w, "%v\t", pair.Value)
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	fmt.Printf("%d row", p.RowCount)
	if p.RowCount != 1 {
		fmt.Print("s")
	}
	fmt.Println()
}
