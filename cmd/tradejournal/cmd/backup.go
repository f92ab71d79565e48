package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the journal store",
	Long: `Snapshot every key of the journal store.

Subcommands:
  run      - Upload a snapshot to the configured bucket, or write it to --out
  restore  - Write a snapshot file back into the store

Examples:
  tradejournal backup run
  tradejournal backup run --out journal-backup.json
  tradejournal backup restore journal-backup.json`,
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Take a snapshot",
	Args:  cobra.NoArgs,
	RunE:  runBackupRun,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot-file>",
	Short: "Restore a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupRestore,
}

var backupOut string

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupRunCmd, backupRestoreCmd)

	backupRunCmd.Flags().StringVar(&backupOut, "out", "", "write the snapshot to this file instead of uploading")
}

func (a *app) backupService(ctx context.Context) (*backup.Service, error) {
	b := a.cfg.Backup
	if !b.Enabled || b.Bucket == "" {
		return nil, fmt.Errorf("backup is not enabled (set backup.enabled and backup.bucket)")
	}
	client, err := backup.NewS3Client(ctx, backup.S3Config{
		Region:          b.Region,
		Endpoint:        b.Endpoint,
		AccessKeyID:     b.AccessKeyID,
		SecretAccessKey: b.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return backup.NewService(a.store.Blobs(), storeCodec(a.cfg.Store.Codec), client, b.Bucket, b.Prefix, a.log), nil
}

// storeCodec names the codec the store encodes with; empty means JSON.
func storeCodec(name string) string {
	if name == "" {
		return "json"
	}
	return name
}

func runBackupRun(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if backupOut != "" {
		snap, err := backup.Take(cmd.Context(), a.store.Blobs(), time.Now())
		if err != nil {
			return err
		}
		snap.Codec = storeCodec(a.cfg.Store.Codec)

		f, err := os.Create(backupOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", backupOut, err)
		}
		defer f.Close()
		if err := backup.Write(f, snap); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %d keys to %s\n", len(snap.Keys), backupOut)
		return nil
	}

	svc, err := a.backupService(cmd.Context())
	if err != nil {
		return err
	}
	key, err := svc.Upload(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Uploaded s3://%s/%s\n", a.cfg.Backup.Bucket, key)
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := backup.Read(f)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if codec := storeCodec(a.cfg.Store.Codec); snap.Codec != "" && snap.Codec != codec {
		return fmt.Errorf("snapshot was written with codec %q, store uses %q", snap.Codec, codec)
	}
	if err := backup.Restore(cmd.Context(), a.store.Blobs(), snap); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %d keys from %s\n", len(snap.Keys), args[0])
	return nil
}
