package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-snp/internal/reference"
)

func newDownloadCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download reference tables from their configured URLs",
		Long: `Fetch every reference table that has a references.<key>.url entry into the
data directory (or its configured path). Existing files are kept unless --force.`,
		Example: `  vibe-snp config set references.traits.url https://example.org/snp_traits.csv
  vibe-snp download
  vibe-snp download --data-dir /data/vibe-snp --force`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, a, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-download files that already exist")

	return cmd
}

func runDownload(cmd *cobra.Command, a *app, force bool) error {
	out := cmd.OutOrStdout()
	sources := a.cfg.Sources()

	var failed int
	var attempted int
	for _, cat := range reference.Categories {
		src := sources[cat]
		if src.URL == "" {
			continue
		}
		attempted++

		dest := src.Path
		if dest == "" {
			dest = reference.DefaultPath(cat, a.cfg.DataDir)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(dest), err)
		}

		fmt.Fprintf(out, "%s:\n", cat.Label())
		if err := downloadFile(cmd.Context(), out, cat, src.URL, dest, force); err != nil {
			a.logger.Warn("download failed",
				zap.String("category", cat.Key()),
				zap.String("url", src.URL),
				zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not download %s table: %v\n", cat.Label(), err)
			failed++
		}
	}

	if attempted == 0 {
		fmt.Fprintf(out, "No reference URLs configured.\n")
		fmt.Fprintf(out, "Set one with: vibe-snp config set references.<key>.url <url>\n")
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, attempted)
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To analyze a genotype file, run:\n")
	fmt.Fprintf(out, "  vibe-snp analyze genome.txt\n")
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(ctx context.Context, out io.Writer, cat reference.Category, url, destPath string, force bool) error {
	if info, err := os.Stat(destPath); err == nil && !force {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		out:        out,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	// Make sure the new file parses before it replaces anything.
	if _, err := reference.LoadTable(cat, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("downloaded file is not a valid table: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
