package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"

	"github.com/nicka06/monketer/internal/store"
	"github.com/nicka06/monketer/internal/template"
)

var (
	templateSearch    string
	templateFile      string
	templateOutputDir string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template management commands",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show template details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templateImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a template from a JSON file",
	RunE:  runTemplateImport,
}

var templateExportCmd = &cobra.Command{
	Use:   "export <id|name>",
	Short: "Export a template to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateExport,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a template and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

var templateVersionsCmd = &cobra.Command{
	Use:   "versions <id|name>",
	Short: "List a template's revisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateVersions,
}

func init() {
	templateListCmd.Flags().StringVar(&templateSearch, "search", "", "Filter by name substring")

	templateImportCmd.Flags().StringVar(&templateFile, "file", "", "Template JSON file (required)")
	templateImportCmd.MarkFlagRequired("file")

	templateExportCmd.Flags().StringVar(&templateOutputDir, "output", ".", "Output directory")

	templateCmd.AddCommand(
		templateListCmd,
		templateShowCmd,
		templateImportCmd,
		templateExportCmd,
		templateDeleteCmd,
		templateVersionsCmd,
	)
	rootCmd.AddCommand(templateCmd)
}

func openStore() (*store.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := bolt.Open(cfg.Storage.Path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}

	cleanup := func() {
		db.Close()
	}

	return st, cleanup, nil
}

// resolveTemplate looks a template up by id first, then by name.
func resolveTemplate(cmd *cobra.Command, st *store.Store, ref string) (*store.Record, error) {
	rec, err := st.Get(cmd.Context(), ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if rec == nil {
		rec, err = st.GetByName(cmd.Context(), ref)
		if err != nil {
			return nil, fmt.Errorf("failed to get template: %w", err)
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("template not found: %s", ref)
	}
	return rec, nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := st.List(cmd.Context(), store.ListFilter{Search: templateSearch})
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREVISION\tSECTIONS\tUPDATED")
	for _, rec := range records {
		id := rec.Template.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			id,
			rec.Template.Name,
			rec.Revision,
			len(rec.Template.Sections),
			rec.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d templates\n", len(records))
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := resolveTemplate(cmd, st, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", rec.Template.ID)
	fmt.Printf("Name:     %s\n", rec.Template.Name)
	fmt.Printf("Revision: %d\n", rec.Revision)
	fmt.Printf("Created:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:  %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))

	fmt.Printf("\nSections:\n")
	for _, sec := range rec.Template.Sections {
		fmt.Printf("  %s (%d elements)\n", sec.ID, len(sec.Elements))
		for _, el := range sec.Elements {
			content := el.Content
			if len(content) > 50 {
				content = content[:47] + "..."
			}
			fmt.Printf("    - %s [%s] %s\n", el.ID, el.Type, content)
		}
	}

	return nil
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	var tpl template.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return fmt.Errorf("invalid template JSON: %w", err)
	}

	rec, err := st.Create(cmd.Context(), &tpl)
	if err != nil {
		return fmt.Errorf("failed to import template: %w", err)
	}

	fmt.Printf("Template imported successfully\n")
	fmt.Printf("  ID:   %s\n", rec.Template.ID)
	fmt.Printf("  Name: %s\n", rec.Template.Name)
	return nil
}

func runTemplateExport(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := resolveTemplate(cmd, st, args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(templateOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(&rec.Template, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	path := fmt.Sprintf("%s/%s.json", templateOutputDir, rec.Template.Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}

	fmt.Printf("Exported: %s\n", path)
	return nil
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := resolveTemplate(cmd, st, args[0])
	if err != nil {
		return err
	}

	if err := st.Delete(cmd.Context(), rec.Template.ID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	fmt.Printf("Template deleted: %s\n", rec.Template.Name)
	return nil
}

func runTemplateVersions(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := resolveTemplate(cmd, st, args[0])
	if err != nil {
		return err
	}

	versions, err := st.Versions(cmd.Context(), rec.Template.ID)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REVISION\tSECTIONS\tUPDATED")
	for _, v := range versions {
		fmt.Fprintf(w, "%d\t%d\t%s\n",
			v.Revision,
			len(v.Template.Sections),
			v.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	return nil
}
