package main

import (
	"fmt"

	"github.com/kjk/tabdb/backup"
	"github.com/spf13/cobra"
)

func (a *app) s3Config() *backup.Config {
	return &backup.Config{
		Access:   a.getenv("TABDB_S3_ACCESS"),
		Secret:   a.getenv("TABDB_S3_SECRET"),
		Bucket:   a.getenv("TABDB_S3_BUCKET"),
		Endpoint: a.getenv("TABDB_S3_ENDPOINT"),
		Region:   a.getenv("TABDB_S3_REGION"),
		Codec:    a.getenv("TABDB_BACKUP_CODEC"),
	}
}

func (a *app) sftpConfig() *backup.SFTPConfig {
	return &backup.SFTPConfig{
		User:    a.getenv("TABDB_SFTP_USER"),
		Host:    a.getenv("TABDB_SFTP_HOST"),
		KeyPath: a.getenv("TABDB_SFTP_KEY"),
		Dir:     a.getenv("TABDB_SFTP_DIR"),
		Codec:   a.getenv("TABDB_BACKUP_CODEC"),
	}
}

func newBackupCmd(a *app) *cobra.Command {
	var useSFTP bool
	cmd := &cobra.Command{
		Use:   "backup <file> [prefix]",
		Short: "Upload a table file and its index to S3 or an sftp server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var uploaded []string
			var err error
			if useSFTP {
				uploaded, err = backup.UploadSFTP(ctx, a.sftpConfig(), args[0])
			} else {
				prefix := ""
				if len(args) > 1 {
					prefix = args[1]
				}
				var c *backup.Client
				if c, err = backup.New(ctx, a.s3Config()); err != nil {
					return err
				}
				uploaded, err = c.UploadStore(ctx, args[0], prefix)
			}
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			for _, name := range uploaded {
				p.line("uploaded %s", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useSFTP, "sftp", false, "upload to TABDB_SFTP_HOST instead of S3")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <prefix> <file>",
		Short: "Download a table file and its index from S3",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := backup.New(ctx, a.s3Config())
			if err != nil {
				return err
			}
			if err = c.DownloadStore(ctx, args[0], args[1]); err != nil {
				return err
			}
			newPrinter(cmd).line("restored '%s'", args[1])
			return nil
		},
	}
}

func newRemoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage backups in S3",
	}
	ls := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List backup files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := backup.New(ctx, a.s3Config())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			keys, err := c.List(ctx, prefix)
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			if p.asJSON {
				return p.json(keys)
			}
			for _, key := range keys {
				p.line("%s", key)
			}
			return nil
		},
	}
	ls.Flags().Bool("json", false, "output as JSON")
	rm := &cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete backup files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := backup.New(ctx, a.s3Config())
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			for _, key := range args {
				if !c.Exists(ctx, key) {
					return fmt.Errorf("'%s' doesn't exist in bucket '%s'", key, c.Bucket)
				}
				if err = c.Remove(ctx, key); err != nil {
					return err
				}
				p.line("removed %s", key)
			}
			return nil
		},
	}
	cmd.AddCommand(ls, rm)
	return cmd
}
