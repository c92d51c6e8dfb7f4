package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/product"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
	maxLineBytes  = 1 << 20
)

// catalog is the subset of the product repository the importer writes to.
type catalog interface {
	Names(ctx context.Context) ([]string, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, p *product.Product) error
}

type feedCounts struct {
	read    uint64
	invalid uint64
}

type importStats struct {
	read       uint64
	created    uint64
	duplicates uint64
	invalid    uint64
}

// importer decodes feeds concurrently and inserts from a single writer.
// The bloom filter holds every known name; a positive is confirmed against
// the catalog before a record is dropped.
type importer struct {
	catalog catalog
	known   *bloom.BloomFilter
	stats   importStats
}

func newImporter(c catalog) *importer {
	return &importer{
		catalog: c,
		known:   bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}
}

// Import streams every file and creates the products whose name is new.
func (im *importer) Import(ctx context.Context, files []string) (importStats, error) {
	names, err := im.catalog.Names(ctx)
	if err != nil {
		return im.stats, errors.Wrap(err, "load catalog names")
	}
	for _, n := range names {
		im.known.AddString(n)
	}
	slog.Info("loaded catalog names", slog.Int("count", len(names)))

	records := make(chan product.Product, 256)
	counts := make([]feedCounts, len(files))

	g, gctx := errgroup.WithContext(ctx)
	readers, rctx := errgroup.WithContext(gctx)
	for i, f := range files {
		readers.Go(func() error {
			return streamFeed(rctx, f, records, &counts[i])
		})
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})
	g.Go(func() error {
		for p := range records {
			if err := im.add(gctx, p); err != nil {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	for _, c := range counts {
		im.stats.read += c.read
		im.stats.invalid += c.invalid
	}
	return im.stats, err
}

func (im *importer) add(ctx context.Context, p product.Product) error {
	if im.known.TestString(p.Name) {
		exists, err := im.catalog.ExistsByName(ctx, p.Name)
		if err != nil {
			return errors.Wrapf(err, "check %q", p.Name)
		}
		if exists {
			im.stats.duplicates++
			return nil
		}
	}

	if err := im.catalog.Create(ctx, &p); err != nil {
		return errors.Wrapf(err, "create %q", p.Name)
	}
	im.known.AddString(p.Name)
	im.stats.created++
	if im.stats.created%progressEvery == 0 {
		slog.Info("import progress", slog.Uint64("created", im.stats.created))
	}
	return nil
}

// streamFeed decodes a gzip JSON Lines file and sends valid records to out.
// Malformed or invalid lines are logged and skipped.
func streamFeed(ctx context.Context, path string, out chan<- product.Product, counts *feedCounts) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return scanFeed(ctx, path, gz, out, counts)
}

func scanFeed(ctx context.Context, path string, r io.Reader, out chan<- product.Product, counts *feedCounts) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var line int
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		p, err := decodeProduct(raw)
		if err != nil {
			counts.invalid++
			slog.Warn("skipping line",
				slog.String("file", path),
				slog.Int("line", line),
				slog.String("error", err.Error()),
			)
			continue
		}
		counts.read++

		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

func decodeProduct(raw []byte) (product.Product, error) {
	p := product.Product{Price: decimal.Zero, PriceOff: decimal.Zero}
	err := jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "qty":
			p.Qty, err = d.Int()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "price_off":
			p.PriceOff, err = decodeDecimal(d)
		case "img":
			p.Img, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return p, errors.Wrap(err, "decode")
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
