package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/fs"
)

// chunk is the transfer size used by cat, copyin and copyout.
const chunk uint64 = 16384

func parseInum(s string) (common.Inum, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return common.NULLINUM, fmt.Errorf("bad inode number %q: %w", s, err)
	}
	return common.Inum(n), nil
}

func (a *app) formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Create a new, empty file system on the image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFs(a.cfg.Blocks, false, func(fsys *fs.Fs) error {
				if err := fsys.Format(); err != nil {
					return err
				}
				a.log.Infow("formatted", "disk", a.cfg.Disk, "blocks", a.cfg.Blocks)
				fmt.Fprintln(cmd.OutOrStdout(), "disk formatted.")
				return nil
			})
		},
	}
}

func (a *app) debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Print the superblock and every valid inode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFs(0, false, func(fsys *fs.Fs) error {
				r, err := fsys.Debug()
				if r != nil {
					if _, werr := r.WriteTo(cmd.OutOrStdout()); werr != nil {
						return werr
					}
				}
				return err
			})
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Allocate a new inode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				inum, err := fsys.Create()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created inode %d\n", inum)
				return nil
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <inumber>",
		Short: "Delete an inode and free its blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inum, err := parseInum(args[0])
			if err != nil {
				return err
			}
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				if err := fsys.Delete(inum); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inode %d deleted.\n", inum)
				return nil
			})
		},
	}
}

func (a *app) getsizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "getsize <inumber>",
		Short: "Print the size of an inode in bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inum, err := parseInum(args[0])
			if err != nil {
				return err
			}
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				sz, err := fsys.Size(inum)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inode %d has size %d\n", inum, sz)
				return nil
			})
		},
	}
}

// copyOut streams inum to w and returns the number of bytes copied.
func copyOut(fsys *fs.Fs, inum common.Inum, w io.Writer) (uint64, error) {
	var off uint64
	for {
		data, err := fsys.Read(inum, off, chunk)
		if err != nil {
			return off, err
		}
		if len(data) == 0 {
			return off, nil
		}
		if _, err := w.Write(data); err != nil {
			return off, err
		}
		off += uint64(len(data))
	}
}

func (a *app) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <inumber>",
		Short: "Write the contents of an inode to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inum, err := parseInum(args[0])
			if err != nil {
				return err
			}
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				_, err := copyOut(fsys, inum, cmd.OutOrStdout())
				return err
			})
		},
	}
}

func (a *app) copyoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copyout <inumber> <file>",
		Short: "Copy the contents of an inode to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inum, err := parseInum(args[0])
			if err != nil {
				return err
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				n, err := copyOut(fsys, inum, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d bytes copied\n", n)
				return nil
			})
		},
	}
}

func (a *app) copyinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copyin <file> <inumber>",
		Short: "Copy a local file into an inode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inum, err := parseInum(args[1])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.withFs(0, true, func(fsys *fs.Fs) error {
				var off uint64
				for off < uint64(len(data)) {
					end := off + chunk
					if end > uint64(len(data)) {
						end = uint64(len(data))
					}
					n, err := fsys.Write(inum, off, data[off:end])
					if err != nil {
						return err
					}
					short := n < end-off
					off += n
					if short {
						a.log.Warnw("disk full", "inode", inum, "copied", off, "wanted", len(data))
						break
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d bytes copied\n", off)
				return nil
			})
		},
	}
}
