package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"medspresso/internal/common/fsutil"
	"medspresso/internal/extract"
)

type extractFlags struct {
	input      string
	model      string
	promptType string
	format     string
	output     string
	system     string
	noStream   bool
}

func newExtractCmd(a *app) *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract information from a clinical text file",
		Example: "  medspresso extract --input note.txt\n" +
			"  medspresso extract --input note.txt --prompt-type vitals --format json --output out/vitals.json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runExtract(cmd, a, f); err != nil {
				return fmt.Errorf("error during extraction: %w", err)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.input, "input", "", "Input file containing clinical text")
	fl.StringVar(&f.model, "model", "", "Model to use (default from config, deepseek-r1:1.5b)")
	fl.StringVar(&f.promptType, "prompt-type", "medications", "Type of extraction to perform")
	fl.StringVar(&f.format, "format", "text", "Output format: text|json")
	fl.StringVar(&f.output, "output", "", "Output file (printed to the console when empty)")
	fl.StringVar(&f.system, "system", "", "System prompt forwarded to the daemon")
	fl.BoolVar(&f.noStream, "no-stream", false, "Wait for the complete response instead of streaming chunks")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runExtract(cmd *cobra.Command, a *app, f extractFlags) error {
	format, err := extract.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(f.input) {
		return fmt.Errorf("input file %q does not exist", f.input)
	}
	text, err := fsutil.ReadText(f.input)
	if err != nil {
		return err
	}
	svc, err := a.service(true)
	if err != nil {
		return err
	}

	ctx, cancel := a.context(cmd.Context())
	defer cancel()

	var sink io.Writer
	if !f.noStream {
		sink = a.console.Out
	}
	res, err := svc.Run(ctx, extract.Request{
		Text:       text,
		Model:      f.model,
		PromptType: f.promptType,
		System:     f.system,
		Format:     format,
		Streaming:  !f.noStream,
	}, sink)
	if err != nil {
		return err
	}

	out, err := res.Render()
	if err != nil {
		return err
	}
	if f.output != "" {
		if err := fsutil.WriteFile(f.output, out); err != nil {
			return err
		}
		fmt.Fprintln(a.console.Out)
		a.console.Success("Results written to: %s", f.output)
		return nil
	}
	a.console.Result("Results:", string(out))
	return nil
}
