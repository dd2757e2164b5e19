package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/1024mb/gog-installer-update-checker/internal/config"
	"github.com/1024mb/gog-installer-update-checker/internal/gog"
	"github.com/1024mb/gog-installer-update-checker/internal/innoextract"
	"github.com/1024mb/gog-installer-update-checker/internal/installer"
	"github.com/1024mb/gog-installer-update-checker/internal/naming"
	"github.com/1024mb/gog-installer-update-checker/internal/peinfo"
	"github.com/1024mb/gog-installer-update-checker/internal/policy"
	"github.com/1024mb/gog-installer-update-checker/internal/reconcile"
	"github.com/1024mb/gog-installer-update-checker/internal/report"
	"github.com/1024mb/gog-installer-update-checker/internal/resolver"
)

// Run is the top-level entry point: discover installers, resolve product
// identities, enrich each record with its descriptor, compare against the
// catalog, and report. The returned error is fatal input failure; degraded
// per-installer outcomes surface through the logger instead.
func Run(ctx context.Context, cfg *config.Config, log Logger, pol *policy.Policy) error {
	files, err := Discover(cfg.Paths, log)
	if err != nil {
		return fmt.Errorf("discovering installers: %w", err)
	}
	if len(files) == 0 {
		return errors.New("no installer files found in the given paths")
	}

	stats := RunStats{Found: len(files)}
	log.Info("Found %d installer file(s)", stats.Found)

	tool := innoextract.New(cfg.InnoextractPath)
	meta := peinfo.NewReader()
	client := gog.NewClient()
	res := resolver.New(pol, client, meta, log)

	idByPath, err := resolveProducts(ctx, files, tool, res, log, &stats)
	if err != nil {
		return err
	}

	byPath := resolver.Dedup(idByPath)
	stats.Resolved = len(byPath)
	log.Info("Resolved %d unique product(s)", stats.Resolved)

	records := enrichRecords(ctx, byPath, tool, meta, pol, log, &stats)

	reconciler := reconcile.New(pol, client, log)
	var findings []*reconcile.Finding
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		remote := reconcile.FetchRemote(ctx, client, rec.ProductID, log)
		if f, update := reconciler.Compare(ctx, rec, remote); update {
			findings = append(findings, f)
		}
	}
	stats.Updates = len(findings)

	report.Sort(findings)
	report.PrintConsole(os.Stdout, findings)
	if len(findings) == 0 {
		log.Success("All installers are up to date.")
	}

	if cfg.OutputFile != "" && len(findings) > 0 {
		out := config.TimestampPath(cfg.OutputFile, time.Now())
		if err := report.WriteFile(out, findings); err != nil {
			return err
		}
		log.Info("Report written to %s", out)
	}

	log.Info("Done: %d file(s), %d product(s), %d excluded, %d skipped, %d update(s)",
		stats.Found, stats.Resolved, stats.Excluded, stats.Skipped, stats.Updates)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// resolveProducts maps each installer path onto a product id. A broken
// innoextract is fatal; a single unresolvable installer is logged and
// skipped.
func resolveProducts(
	ctx context.Context,
	files []string,
	tool *innoextract.Tool,
	res *resolver.Resolver,
	log Logger,
	stats *RunStats,
) (map[string]string, error) {
	idByPath := map[string]string{}
	for _, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		listing, err := tool.List(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", path, err)
		}

		id, err := res.Resolve(ctx, path, listing)
		switch {
		case err == nil:
			idByPath[path] = id
		case errors.Is(err, resolver.ErrSkippedDelisted):
			log.Info("Skipping delisted product: %s", path)
			stats.Skipped++
		case errors.Is(err, resolver.ErrMissingName):
			log.Warn("No product name available for %s, skipping", path)
			stats.Skipped++
		case errors.Is(err, resolver.ErrAmbiguous):
			log.Warn("Couldn't pick a catalog product for %s, skipping", path)
			stats.Skipped++
		default:
			log.Warn("Couldn't resolve %s: %v", path, err)
			stats.Skipped++
		}
	}
	return idByPath, nil
}

// enrichRecords builds a Record per resolved installer and applies its
// extracted descriptor. DLC and bonus-content installers are dropped here.
func enrichRecords(
	ctx context.Context,
	byPath map[string]string,
	tool *innoextract.Tool,
	meta *peinfo.Reader,
	pol *policy.Policy,
	log Logger,
	stats *RunStats,
) []*installer.Record {
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var records []*installer.Record
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		rec, excluded := enrichOne(ctx, path, byPath[path], tool, meta, pol, log)
		if excluded {
			log.Debug("Excluding non-base-game installer %s", path)
			stats.Excluded++
			continue
		}
		records = append(records, rec)
	}
	return records
}

// enrichOne reads executable metadata and the extracted descriptor for one
// installer. Metadata failures degrade to an empty Info; a record without
// any recoverable markers is caught later as unverifiable. The descriptor
// scratch directory is always released before returning.
func enrichOne(
	ctx context.Context,
	path, productID string,
	tool *innoextract.Tool,
	meta *peinfo.Reader,
	pol *policy.Policy,
	log Logger,
) (rec *installer.Record, excluded bool) {
	info, err := meta.Read(path)
	if err != nil {
		log.Warn("Couldn't read executable metadata of %s: %v", path, err)
		info = &peinfo.Info{}
	}
	rec = installer.NewRecord(path, productID, info)

	scratch, err := os.MkdirTemp("", "gogcheck-")
	if err != nil {
		log.Warn("Couldn't create a scratch directory: %v", err)
		return rec, false
	}
	defer os.RemoveAll(scratch)

	var descPath string
	if rec.Generation == naming.GenLegacy {
		descPath, err = tool.ExtractInfoFileLegacy(ctx, productID, path, scratch)
	} else {
		descPath, err = tool.ExtractInfoFile(ctx, productID, path, scratch)
	}
	if err != nil {
		log.Warn("Couldn't extract the game descriptor from %s: %v", path, err)
		return rec, false
	}

	data, err := os.ReadFile(descPath)
	if err != nil {
		log.Warn("Couldn't read the game descriptor of %s: %v", path, err)
		return rec, false
	}
	gi, err := installer.ParseGameInfo(data)
	if err != nil {
		log.Warn("Malformed game descriptor in %s: %v", path, err)
		return rec, false
	}

	if !gi.IsBaseGame(pol.GoodieIDs) {
		return rec, true
	}
	rec.ApplyGameInfo(gi)
	return rec, false
}
