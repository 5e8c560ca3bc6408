package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a zstd-compressed database snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := store.New(cfg.Store)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer db.Close()

			size, err := backupStore(db, outputPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup complete: %s\n", formatSize(size))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "file", "f", "", "output file (.db.zst)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// backupStore snapshots the store into a temp file and zstd-compresses it to
// outputPath. It returns the compressed size.
func backupStore(db *store.Store, outputPath string) (int64, error) {
	tmpDir, err := os.MkdirTemp("", "maritime-backup-")
	if err != nil {
		return 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if err := db.Backup(snapshot); err != nil {
		return 0, err
	}

	src, err := os.Open(snapshot)
	if err != nil {
		return 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return 0, fmt.Errorf("create zstd writer: %w", err)
	}
	defer zw.Close()

	if _, err := io.Copy(zw, src); err != nil {
		return 0, fmt.Errorf("compress snapshot: %w", err)
	}

	// Close explicitly to catch write errors
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close zstd: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return 0, fmt.Errorf("stat output file: %w", err)
	}
	return info.Size(), nil
}

func newRestoreCmd() *cobra.Command {
	var inputPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the database from a backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			disputes, err := restoreStore(inputPath, cfg.Store.Path, overwrite)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restore complete: %d disputes\n", disputes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "backup file (.db.zst)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing database")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// restoreStore decompresses a backup to dbPath and returns how many disputes
// it holds. An existing database is only replaced with overwrite.
func restoreStore(inputPath, dbPath string, overwrite bool) (int, error) {
	if _, err := os.Stat(dbPath); err == nil && !overwrite {
		return 0, fmt.Errorf("database %s already exists, add --overwrite to replace it", dbPath)
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}

	tmpPath := dbPath + ".restore"
	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create restore file: %w", err)
	}
	if _, err := io.Copy(out, zr); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("decompress archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close restore file: %w", err)
	}

	// Stale WAL files would be replayed over the restored database
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("replace database: %w", err)
	}

	db, err := store.New(config.StoreConfig{Path: dbPath})
	if err != nil {
		return 0, fmt.Errorf("open restored database: %w", err)
	}
	defer db.Close()

	pairs, err := db.ListAgentPairs()
	if err != nil {
		return 0, err
	}
	slog.Info("database restored", "path", dbPath, "disputes", len(pairs))
	return len(pairs), nil
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
