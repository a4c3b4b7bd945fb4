package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fileconv/internal/logging"
	"fileconv/internal/present"
	"fileconv/internal/session"
	"fileconv/internal/textutil"
)

const shellHelp = `Commands:
  open <file>          upload a file (or drop files onto the terminal)
  select [code]        pick a target format; no code clears the selection
  convert [compress]   convert the loaded file to the selected format
  download [overwrite] save the converted file to the download directory
  formats              list the formats offered for the loaded file
  status               show the current step
  reset                start over
  help                 show this help
  quit                 leave the shell`

func newShellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: drop a file, pick a format, convert, download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := env.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			sh := &shell{env: env, out: cmd.OutOrStdout()}
			fmt.Fprintf(sh.out, "Connected to %s. Type `help` for commands.\n", env.client.BaseURL())
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type shell struct {
	env *sessionEnv
	out io.Writer
}

// run reads commands until EOF, quit or cancellation. Command errors are
// reported and the loop continues.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "fileconv [%s]> ", s.env.machine.State())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := s.dispatch(ctx, line)
		if err != nil {
			s.report(err)
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) dispatch(ctx context.Context, line string) (bool, error) {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	m := s.env.machine

	switch strings.ToLower(name) {
	case "quit", "exit":
		fmt.Fprintln(s.out, "Bye!")
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "open", "upload":
		paths := textutil.ParseDroppedPaths(rest)
		if len(paths) == 0 {
			return false, errors.New("usage: open <file>")
		}
		return false, m.Intake(ctx, session.SourcePicker, paths)
	case "select":
		return false, m.SelectFormat(rest)
	case "convert":
		compress := s.env.cfg.Conversion.Compress
		if rest != "" {
			compress = isCompressArg(rest)
		}
		return false, s.env.withConversionLock(func() error {
			_, err := m.Convert(ctx, session.ConvertOptions{Compress: compress})
			return err
		})
	case "download":
		result, ok := m.Result()
		if !ok {
			return false, errors.New("nothing to download yet; convert a file first")
		}
		overwrite := strings.EqualFold(rest, "overwrite") || rest == "--overwrite"
		return false, s.env.saveResult(ctx, s.out, result, s.env.latestRequestID(ctx), overwrite)
	case "formats":
		s.printFormats()
	case "status":
		s.printStatus()
	case "reset":
		return false, m.Reset()
	default:
		if paths := droppedPaths(line); len(paths) > 0 {
			return false, m.Intake(ctx, session.SourceDrop, paths)
		}
		return false, fmt.Errorf("unknown command %q (type `help`)", name)
	}
	return false, nil
}

func (s *shell) report(err error) {
	_ = s.env.explain(s.out, err)
	if alreadyReported(err) {
		return
	}
	s.env.logger.Debug("shell command failed", logging.Error(err))
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func (s *shell) printFormats() {
	snap := s.env.machine.Snapshot()
	if snap.Handle == "" {
		fmt.Fprintln(s.out, present.FormatsTable(s.env.catalog, s.env.catalog.Categories()))
		return
	}
	if !snap.HasFormats() {
		fmt.Fprintln(s.out, "No target formats available for this file.")
		return
	}
	rows := make([][]string, 0, len(snap.Options))
	for _, opt := range snap.Options {
		if opt.Code == "" {
			continue
		}
		mark := ""
		if opt.Code == snap.Selected {
			mark = "*"
		}
		rows = append(rows, []string{mark, opt.Code, opt.Label})
	}
	fmt.Fprintln(s.out, present.RenderTable([]string{"", "Code", "Label"}, rows, nil))
}

func (s *shell) printStatus() {
	snap := s.env.machine.Snapshot()
	fmt.Fprintf(s.out, "State:  %s\n", snap.State)
	if snap.Handle != "" {
		fmt.Fprintf(s.out, "File:   %s (%s)\n", snap.Handle, snap.Category)
	}
	if snap.Selected != "" {
		fmt.Fprintf(s.out, "Target: %s\n", snap.Selected)
	}
	if snap.Result != nil {
		fmt.Fprintln(s.out, present.ResultLine(*snap.Result, nil))
	}
}

// droppedPaths returns the parsed paths when the first one names an existing
// file, which is how a drop onto the terminal looks.
func droppedPaths(line string) []string {
	paths := textutil.ParseDroppedPaths(line)
	if len(paths) == 0 {
		return nil
	}
	info, err := os.Stat(paths[0])
	if err != nil || info.IsDir() {
		return nil
	}
	return paths
}

func isCompressArg(arg string) bool {
	switch strings.ToLower(strings.TrimLeft(arg, "-")) {
	case "compress", "yes", "true", "on":
		return true
	default:
		return false
	}
}
