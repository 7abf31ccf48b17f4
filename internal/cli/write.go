package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taleteller/internal/application/document"
	"taleteller/internal/application/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Start an interactive writing session",
		Long: "Start an interactive writing session. Plain lines are added to the draft; " +
			"commands start with '/'. Type /help inside the session for the command list.",
		Args: cobra.NoArgs,
		Run:  runWrite,
	}

	cmd.Flags().StringP("mode", "m", "", "Story mode (adventure, horror, fantasy, mystery, scifi, romance)")
	cmd.Flags().String("format", "text", "Output format: text or text-images")
	cmd.Flags().StringP("out", "o", ".", "Directory for exported PDFs")
	cmd.Flags().String("author", "", "Author written into exported PDFs")

	RootCmd.AddCommand(cmd)
}

func runWrite(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	author, _ := cmd.Flags().GetString("author")

	id := uuid.NewString()
	client := newClient(id)
	sess := session.New(session.Options{ID: id, Assistant: client, Illustrator: client})

	r := newREPL(sess, document.NewExporter(author), cmd.OutOrStdout(), outDir)
	if mode != "" {
		if err := r.start(mode + " " + format); err != nil {
			exitErr("write", err)
		}
	} else {
		r.greet()
	}

	if err := r.run(cmd.Context(), cmd.InOrStdin()); err != nil {
		exitErr("write", err)
	}
}
