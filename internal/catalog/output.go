package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// Writer serializes the per-market artifacts. DataDir holds the canonical
// files; PublicDir receives the servable copy of each search index.
type Writer struct {
	DataDir   string
	PublicDir string
}

// MarketCounts is the per-market slice of the run summary.
type MarketCounts struct {
	Brands        int `json:"brands"`
	Flagged       int `json:"flagged"`
	Uncategorized int `json:"uncategorized"`
}

// RunSummary records one pipeline run for operational review.
type RunSummary struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	FeedPages   map[string]int          `json:"feed_pages,omitempty"`
	Markets     map[string]MarketCounts `json:"markets"`
	TotalBrands int                     `json:"total_brands"`
}

// BackfillDescriptions merges descriptions from the previous run's brand file
// into the current set, matching by slug. Descriptions are maintained
// externally; losing them on every re-run would discard that work. A missing
// or unreadable previous file is not an error.
func (w *Writer) BackfillDescriptions(market string, brands []model.Brand) int {
	path := filepath.Join(w.DataDir, "brands-"+market+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var previous []model.Brand
	if err := json.Unmarshal(data, &previous); err != nil {
		zap.L().Warn("output: previous brand file unreadable, skipping backfill",
			zap.String("market", market), zap.Error(err))
		return 0
	}

	bySlug := make(map[string]string, len(previous))
	for _, b := range previous {
		if b.Description != "" {
			bySlug[b.Slug] = b.Description
		}
	}

	merged := 0
	for i := range brands {
		if brands[i].Description == "" {
			if desc, ok := bySlug[brands[i].Slug]; ok {
				brands[i].Description = desc
				merged++
			}
		}
	}
	return merged
}

// WriteMarket writes the brand list, search index (plus public copy),
// category summary and flagged review file for one market.
func (w *Writer) WriteMarket(market string, brands, flagged []model.Brand) error {
	if err := w.writeJSON(filepath.Join(w.DataDir, "brands-"+market+".json"), brands); err != nil {
		return err
	}

	index := make([]model.SearchIndexEntry, 0, len(brands))
	for _, b := range brands {
		index = append(index, model.SearchIndexEntry{
			Name:        b.Name,
			Slug:        b.Slug,
			Domain:      b.Domain,
			LogoURL:     b.Logo.URL,
			LogoQuality: b.Logo.Quality,
			Category:    b.PrimaryCategory(),
			EPC:         b.EPC,
		})
	}
	indexName := "search-index-" + market + ".json"
	if err := w.writeJSON(filepath.Join(w.DataDir, indexName), index); err != nil {
		return err
	}
	if w.PublicDir != "" {
		if err := w.writeJSON(filepath.Join(w.PublicDir, indexName), index); err != nil {
			return err
		}
	}

	if err := w.writeJSON(filepath.Join(w.DataDir, "categories-"+market+".json"), summarizeCategories(brands)); err != nil {
		return err
	}

	return w.writeJSON(filepath.Join(w.DataDir, "flagged-"+market+".json"), flagged)
}

// WriteFlaggedWorkbook writes the human review workbook, one sheet per market
// in sorted order.
func (w *Writer) WriteFlaggedWorkbook(flaggedByMarket map[string][]model.Brand) error {
	markets := make([]string, 0, len(flaggedByMarket))
	for m := range flaggedByMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	f := xlsx.NewFile()
	for _, m := range markets {
		sheet, err := f.AddSheet(m)
		if err != nil {
			return eris.Wrapf(err, "output: add sheet %s", m)
		}

		header := sheet.AddRow()
		for _, h := range []string{"Name", "Domain", "Country", "Commission", "EPC", "Feed"} {
			header.AddCell().SetString(h)
		}
		for _, b := range flaggedByMarket[m] {
			row := sheet.AddRow()
			row.AddCell().SetString(b.Name)
			row.AddCell().SetString(b.Domain)
			row.AddCell().SetString(b.Country)
			row.AddCell().SetString(b.Commission)
			row.AddCell().SetString(strconv.FormatFloat(b.EPC, 'f', -1, 64))
			row.AddCell().SetString(b.FeedName)
		}
	}

	path := filepath.Join(w.DataDir, "review", "flagged.xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "output: create review dir")
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "output: save flagged workbook")
	}
	return nil
}

// uncategorizedEntry is the review shape for brands that ended with only the
// generic placeholder.
type uncategorizedEntry struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Country string `json:"country"`
	Market  string `json:"market"`
}

// WriteUncategorized writes the cross-market uncategorized review file.
func (w *Writer) WriteUncategorized(byMarket map[string][]model.Brand) error {
	markets := make([]string, 0, len(byMarket))
	for m := range byMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	entries := []uncategorizedEntry{}
	for _, m := range markets {
		for _, b := range byMarket[m] {
			if HasRealCategory(b) {
				continue
			}
			entries = append(entries, uncategorizedEntry{
				Name:    b.Name,
				Domain:  b.Domain,
				Country: b.Country,
				Market:  m,
			})
		}
	}
	return w.writeJSON(filepath.Join(w.DataDir, "uncategorized.json"), entries)
}

// WriteRunSummary writes data/run-summary.json, minting a fresh run ID.
func (w *Writer) WriteRunSummary(feedPages map[string]int, markets map[string]MarketCounts, now time.Time) error {
	total := 0
	for _, c := range markets {
		total += c.Brands
	}
	summary := RunSummary{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		FeedPages:   feedPages,
		Markets:     markets,
		TotalBrands: total,
	}
	return w.writeJSON(filepath.Join(w.DataDir, "run-summary.json"), summary)
}

func summarizeCategories(brands []model.Brand) []model.CategorySummary {
	counts := make(map[string]int)
	for _, b := range brands {
		if c := b.PrimaryCategory(); c != "" {
			counts[c]++
		}
	}

	out := make([]model.CategorySummary, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.CategorySummary{
			Name:  name,
			Slug:  CategorySlug(name),
			Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (w *Writer) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir for %s", filepath.Base(path))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "output: marshal %s", filepath.Base(path))
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "output: write %s", filepath.Base(path))
	}
	return nil
}
