// Package export renders an anchored hourly Merkle batch into the
// regulator-defined XML envelope. This is the one component in the repo
// built on encoding/xml rather than a third-party library; see DESIGN.md.
package export

import (
	"context"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/sentineld/plcwatch/internal/anchor"
	"github.com/sentineld/plcwatch/internal/obsv"
)

// IntegrityEvidence is the root element, namespace urn:phmsa:mega-rule:2024.
type IntegrityEvidence struct {
	XMLName xml.Name `xml:"urn:phmsa:mega-rule:2024 IntegrityEvidence"`
	Segment Segment  `xml:"Segment"`
}

// Segment wraps the single hourly batch; its id attribute is always
// "hourly-batch".
type Segment struct {
	ID          string      `xml:"id,attr"`
	ProofAnchor ProofAnchor `xml:"ProofAnchor"`
}

// ProofAnchor carries the chain, transaction hash, and Merkle root as
// attributes; it has no element content.
type ProofAnchor struct {
	Chain string `xml:"chain,attr"`
	Tx    string `xml:"tx,attr"`
	Root  string `xml:"root,attr"`
}

// RenderHour selects the batch row for hour (truncated to the UTC hour)
// from store and marshals the XML envelope. Errors if no row exists for
// that hour.
func RenderHour(ctx context.Context, store anchor.BatchReader, hour time.Time, metrics *obsv.Metrics) ([]byte, error) {
	batch, ok, err := store.BatchForHour(ctx, hour)
	if err != nil {
		return nil, fmt.Errorf("export: query batch for hour %s: %w", hour, err)
	}
	if !ok {
		return nil, fmt.Errorf("export: no merkle batch anchored for hour %s", hour.UTC().Format(time.RFC3339))
	}

	doc := IntegrityEvidence{
		Segment: Segment{
			ID: "hourly-batch",
			ProofAnchor: ProofAnchor{
				Chain: "polygon",
				Tx:    batch.TxHash,
				Root:  hex.EncodeToString(batch.Root[:]),
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal xml: %w", err)
	}
	out = append([]byte(xml.Header), out...)

	if metrics != nil {
		metrics.ExportRendersTotal.Inc()
	}
	return out, nil
}
