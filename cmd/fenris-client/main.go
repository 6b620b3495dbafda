// Command fenris-client is a thin command-line client, generalizing
// mars9-ramfs's cmd/racon command table (ping/create/read/write/rm/
// stat/mkdir/ls/cd/rmdir/quit against a 9P filesystem) onto Fenris's
// own request/response commands, with cobra subcommands standing in
// for racon's hand-rolled cmds map + flag.Arg(0) dispatch.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenrisfs/fenris"
	"github.com/fenrisfs/fenris/client"
)

var (
	addr     string
	maxFrame uint32
	timeout  time.Duration
)

func dial() (*client.Client, error) {
	return client.Dial(addr, maxFrame, timeout)
}

func printResponse(label string, data []byte, err error) error {
	if err != nil {
		return err
	}
	if len(data) > 0 {
		fmt.Printf("%s: %s\n", label, data)
	} else {
		fmt.Println(label)
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "fenris-client",
		Short: "Talk to a Fenris remote-filesystem server",
	}
	root.PersistentFlags().StringVar(&addr, "addr", "localhost:4940", "server address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "dial timeout")
	root.PersistentFlags().Uint32Var(&maxFrame, "max-frame", 0, "maximum frame size (0 = default)")

	root.AddCommand(
		pingCmd(),
		createCmd(),
		readCmd(),
		writeCmd(),
		appendCmd(),
		rmCmd(),
		statCmd(),
		mkdirCmd(),
		lsCmd(),
		cdCmd(),
		rmdirCmd(),
		quitCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping [payload]",
		Short: "Ping the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			var payload []byte
			if len(args) == 1 {
				payload = []byte(args[0])
			} else {
				payload = []byte("ping")
			}
			out, err := c.Ping(payload)
			return printResponse("pong", out, err)
		},
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file>",
		Short: "Create an empty file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.CreateFile(args[0])
			return reportResult(resp, err)
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <file>",
		Short: "Print a file's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s", resp.ErrorMessage)
			}
			os.Stdout.Write(resp.Data)
			return nil
		},
	}
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <file> <data>",
		Short: "Overwrite a file's contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.WriteFile(args[0], []byte(args[1]))
			return reportResult(resp, err)
		},
	}
}

func appendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append <file> <data>",
		Short: "Append to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.AppendFile(args[0], []byte(args[1]))
			return reportResult(resp, err)
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.DeleteFile(args[0])
			return reportResult(resp, err)
		},
	}
}

func statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file>",
		Short: "Print file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.InfoFile(args[0])
			if err != nil {
				return err
			}
			if !resp.Success || resp.Info == nil {
				return fmt.Errorf("%s", resp.ErrorMessage)
			}
			fmt.Printf("%s\t%d\tdir=%v\n", resp.Info.Name, resp.Info.Size, resp.Info.IsDir)
			return nil
		},
	}
}

func mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.CreateDir(args[0])
			return reportResult(resp, err)
		},
	}
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <dir>",
		Short: "List a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.ListDir(args[0])
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s", resp.ErrorMessage)
			}
			for _, entry := range resp.Listing {
				kind := "f"
				if entry.IsDir {
					kind = "d"
				}
				fmt.Printf("%s\t%s\t%d\n", kind, entry.Name, entry.Size)
			}
			return nil
		},
	}
}

func cdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cd <dir>",
		Short: "Change the session's current directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.ChangeDir(args[0])
			return reportResult(resp, err)
		},
	}
}

func rmdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <dir>",
		Short: "Remove a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.DeleteDir(args[0])
			return reportResult(resp, err)
		},
	}
}

func quitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Send TERMINATE and disconnect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			return c.Terminate()
		},
	}
}

func reportResult(resp fenris.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.ErrorMessage)
	}
	fmt.Println("ok")
	return nil
}
