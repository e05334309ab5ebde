// Package sample generates realistic Summary and Secondary workbooks for
// demos and tests. Output is deterministic for a given seed.
package sample

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"ordersdash/internal/exporter"
	"ordersdash/pkg/contracts/domain"
)

const (
	PrimaryFileName   = "Summary.xlsx"
	SecondaryFileName = "Secondary.xlsx"
)

// Options controls the size and shape of the generated data
type Options struct {
	PrimaryRows   int
	SecondaryRows int
	Users         int
	Days          int
	Start         time.Time
	Seed          int64
	// MatchRate is the share of secondary rows whose key exists in the primary table
	MatchRate float64
}

// DefaultOptions returns a small two-week dataset
func DefaultOptions() Options {
	return Options{
		PrimaryRows:   100,
		SecondaryRows: 150,
		Users:         20,
		Days:          14,
		Start:         time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		Seed:          1,
		MatchRate:     0.85,
	}
}

// Dataset is one generated pair of raw tables
type Dataset struct {
	Primary   domain.Table
	Secondary domain.Table
}

type visitKey struct {
	user string
	day  int
}

var (
	regions    = []string{"North", "South", "East", "West", "Central"}
	categories = []string{"Dairy", "Beverages", "Frozen"}
	products   = []string{"Ghee", "Smp", "Cream", "Uht Milk", "Flavored Milk"}
)

// Generate builds the primary and secondary tables. Primary rows have unique
// (user, day) pairs; several secondary rows may share a pair.
func Generate(opts Options) (Dataset, error) {
	if opts.Users < 1 || opts.Days < 1 {
		return Dataset{}, fmt.Errorf("users and days must be positive (users=%d, days=%d)", opts.Users, opts.Days)
	}
	if max := opts.Users * opts.Days; opts.PrimaryRows > max {
		return Dataset{}, fmt.Errorf("%d primary rows exceed %d users x %d days", opts.PrimaryRows, opts.Users, opts.Days)
	}
	if opts.Start.IsZero() {
		opts.Start = DefaultOptions().Start
	}

	f := gofakeit.New(opts.Seed)
	users := makeUsers(f, opts.Users)

	keys := make([]visitKey, 0, opts.Users*opts.Days)
	for _, u := range users {
		for d := 0; d < opts.Days; d++ {
			keys = append(keys, visitKey{user: u.id, day: d})
		}
	}
	for i := len(keys) - 1; i > 0; i-- {
		j := f.Number(0, i)
		keys[i], keys[j] = keys[j], keys[i]
	}
	keys = keys[:opts.PrimaryRows]

	byID := make(map[string]user, len(users))
	for _, u := range users {
		byID[u.id] = u
	}

	primary := domain.NewTable(
		"order_date", "REGION", "territory", "L4Position User", "L3Position User",
		"L2Position User", "Reporting Manager", "Primary Category", "user",
		"TC", "PC", "OVC", "First Call", "Last Call",
	)
	for i, k := range keys {
		u := byID[k.user]
		first, last := callWindow(f)
		tc := f.Number(5, 40)
		pc := f.Number(0, tc)
		primary.Append(domain.Row{
			"order_date":        rawDate(opts.Start, k.day, i),
			"REGION":            u.region,
			"territory":         u.territory,
			"L4Position User":   u.l4,
			"L3Position User":   u.l3,
			"L2Position User":   u.l2,
			"Reporting Manager": u.manager,
			"Primary Category":  f.RandomString(categories),
			"user":              u.id,
			"TC":                float64(tc),
			"PC":                float64(pc),
			"OVC":               float64(f.Number(0, tc-pc)),
			"First Call":        first,
			"Last Call":         last,
		})
	}

	secondary := domain.NewTable(
		"User", "Order Date", "Distributor", "Beat", "Outlet Name", "Address", "Market",
		"Product", "Ghee", "Dw Primary Packs", "Smp", "Cream", "Uht Milk",
	)
	for i := 0; i < opts.SecondaryRows; i++ {
		var k visitKey
		if len(keys) > 0 && f.Float64Range(0, 1) < opts.MatchRate {
			k = keys[f.Number(0, len(keys)-1)]
		} else {
			k = visitKey{user: fmt.Sprintf("X%03d", f.Number(1, 999)), day: f.Number(0, opts.Days-1)}
		}
		u, known := byID[k.user]
		if !known {
			u = user{beat: "Unassigned"}
		}
		secondary.Append(domain.Row{
			"User":             k.user,
			"Order Date":       opts.Start.AddDate(0, 0, k.day).Format("2006-01-02"),
			"Distributor":      f.Company(),
			"Beat":             u.beat,
			"Outlet Name":      f.Company() + " Store",
			"Address":          f.Street(),
			"Market":           f.City(),
			"Product":          f.RandomString(products),
			"Ghee":             volume(f),
			"Dw Primary Packs": volume(f),
			"Smp":              volume(f),
			"Cream":            volume(f),
			"Uht Milk":         volume(f),
		})
	}

	return Dataset{Primary: primary, Secondary: secondary}, nil
}

// WriteFiles generates a dataset and writes Summary.xlsx and Secondary.xlsx into dir
func WriteFiles(dir string, opts Options, logger *slog.Logger) (primaryPath, secondaryPath string, err error) {
	ds, err := Generate(opts)
	if err != nil {
		return "", "", err
	}

	primaryPath = filepath.Join(dir, PrimaryFileName)
	secondaryPath = filepath.Join(dir, SecondaryFileName)
	if err := exporter.WriteXLSXFile(primaryPath, ds.Primary, exporter.Options{SheetName: "Summary"}); err != nil {
		return "", "", err
	}
	if err := exporter.WriteXLSXFile(secondaryPath, ds.Secondary, exporter.Options{SheetName: "Secondary"}); err != nil {
		return "", "", err
	}

	if logger != nil {
		logger.Info("sample workbooks written",
			slog.String("primary", primaryPath),
			slog.Int("primary_rows", ds.Primary.Len()),
			slog.String("secondary", secondaryPath),
			slog.Int("secondary_rows", ds.Secondary.Len()),
			slog.Int64("seed", opts.Seed))
	}
	return primaryPath, secondaryPath, nil
}

type user struct {
	id        string
	region    string
	territory string
	beat      string
	l2        string
	l3        string
	l4        string
	manager   string
}

func makeUsers(f *gofakeit.Faker, n int) []user {
	users := make([]user, n)
	for i := range users {
		region := f.RandomString(regions)
		territory := fmt.Sprintf("%s-%d", region[:1], f.Number(1, 4))
		users[i] = user{
			id:        fmt.Sprintf("U%03d", i+1),
			region:    region,
			territory: territory,
			beat:      fmt.Sprintf("%s-B%d", territory, f.Number(1, 6)),
			l2:        f.Name(),
			l3:        f.Name(),
			l4:        f.Name(),
			manager:   f.Name(),
		}
	}
	return users
}

// rawDate renders a day in one of the layouts found in real exports,
// including Excel serial numbers.
func rawDate(start time.Time, day, i int) any {
	d := start.AddDate(0, 0, day)
	switch i % 4 {
	case 0:
		return d.Format("02-01-2006")
	case 1:
		return d.Format("2006-01-02")
	case 2:
		return d.Format("02-Jan-2006")
	default:
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return float64(d.Sub(epoch).Hours() / 24)
	}
}

// callWindow returns first and last call times. A few rows miss the first
// call or end before they start.
func callWindow(f *gofakeit.Faker) (any, any) {
	startMin := f.Number(8*60, 11*60+59)
	endMin := f.Number(12*60, 19*60+59)
	switch n := f.Number(1, 100); {
	case n <= 3:
		return nil, clock(endMin)
	case n <= 6:
		return clock(endMin), clock(startMin)
	}
	return clock(startMin), clock(endMin)
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func volume(f *gofakeit.Faker) any {
	if f.Number(1, 10) == 1 {
		return nil
	}
	return float64(f.Number(0, 200)) / 4
}
