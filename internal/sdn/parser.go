package sdn

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SourceURL is the canonical download location of the SDN Advanced list,
// recorded verbatim on every emitted record.
const SourceURL = "https://sanctionslistservice.ofac.treas.gov/api/PublicationPreview/exports/SDN_ADVANCED.XML"

// timestampFormat is the warehouse TIMESTAMP layout: UTC with microseconds.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

var (
	// ErrMalformedXML reports a document the XML decoder rejected. Fatal.
	ErrMalformedXML = eris.New("malformed xml")
	// ErrBadFixedRef reports a FixedRef attribute that is present but not a
	// base-10 integer. Fatal: the party is structurally broken.
	ErrBadFixedRef = eris.New("bad FixedRef")
)

// List is the outcome of one parse: the document-level publication date and
// every flattened party in document order.
type List struct {
	PublicationDate string
	Parties         []Party
}

// Parser flattens SDN Advanced XML documents. It holds no state between
// parses; Workers bounds party-emission parallelism.
type Parser struct {
	Workers int

	now func() time.Time
}

// New returns a Parser with emission parallelism matching GOMAXPROCS.
func New() *Parser {
	return &Parser{
		Workers: runtime.GOMAXPROCS(0),
		now:     time.Now,
	}
}

// Parse flattens one SDN Advanced XML document into party records. The
// reference, location, ID-document, and sanctions tables are built first and
// frozen; parties are then emitted concurrently but returned in document
// order. Parties without a FixedRef are skipped with a warning; a FixedRef
// that is not an integer aborts the parse.
func (p *Parser) Parse(ctx context.Context, data []byte) (*List, error) {
	log := zap.L().With(zap.String("component", "sdn.parser"))
	log.Info("parsing SDN advanced XML", zap.Int("bytes", len(data)))

	root, err := decodeDocument(data)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedXML, "sdn: %v", err)
	}

	pubDate := root.findText("DateOfIssue")

	refs := buildRefValues(root)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "sdn: parse cancelled")
	}

	locations := buildLocations(root, refs)
	idDocs := buildIDDocs(root, refs)
	sanctions := buildSanctions(root, refs)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "sdn: parse cancelled")
	}

	log.Info("lookup maps built",
		zap.Int("locations", len(locations)),
		zap.Int("id_documents", len(idDocs)),
		zap.Int("sanctions_entries", len(sanctions)))

	ingestionTS := p.nowUTC().Format(timestampFormat)

	var distinct []*element
	if block := root.find("DistinctParties"); block != nil {
		distinct = block.all("DistinctParty")
	}

	out := make([]*Party, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i, dp := range distinct {
		i, dp := i, dp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := p.emitParty(dp, i, refs, locations, idDocs, sanctions)
			if err != nil {
				return err
			}
			if rec != nil {
				rec.PublicationDate = pubDate
				rec.IngestionTimestamp = ingestionTS
				rec.SourceURL = SourceURL
				out[i] = rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parties := make([]Party, 0, len(out))
	for _, rec := range out {
		if rec != nil {
			parties = append(parties, *rec)
		}
	}

	log.Info("parse complete",
		zap.Int("parties", len(parties)),
		zap.String("publication_date", pubDate))

	return &List{PublicationDate: pubDate, Parties: parties}, nil
}

// emitParty assembles one record from a DistinctParty element. A nil record
// with nil error means the party was skipped (missing FixedRef).
func (p *Parser) emitParty(dp *element, index int, refs refValues, locations map[string]Address, idDocs map[string]IDDoc, sanctions map[string]*sanctionsEntry) (*Party, error) {
	fixedRef := strings.TrimSpace(dp.attr("FixedRef"))
	if fixedRef == "" {
		zap.L().Warn("DistinctParty without FixedRef, skipping",
			zap.String("component", "sdn.parser"),
			zap.Int("party_index", index))
		return nil, nil
	}
	id, err := strconv.Atoi(fixedRef)
	if err != nil {
		return nil, eris.Wrapf(ErrBadFixedRef, "sdn: party %d: FixedRef %q", index, fixedRef)
	}

	rec := &Party{SDNEntryID: id}
	for _, profile := range dp.all("Profile") {
		rec.SDNType = refs["PartySubTypeValues"][profile.attr("PartySubTypeID")]
		if se, ok := sanctions[profile.attr("ID")]; ok {
			rec.Programs = append([]string(nil), se.programs...)
			rec.LegalAuthorities = append([]string(nil), se.legalAuthorities...)
			rec.Remarks = se.remarks
		}
		for _, identity := range profile.all("Identity") {
			parseIdentity(identity, refs, rec)
		}
		parseFeatures(profile, refs, locations, idDocs, rec)
	}

	rec.collapseEmpty()
	return rec, nil
}

func (p *Parser) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (p *Parser) nowUTC() time.Time {
	if p.now != nil {
		return p.now().UTC()
	}
	return time.Now().UTC()
}
