// Package entrez retrieves promoter sequences from NCBI E-utilities: it maps
// an mRNA accession to its gene, looks up the gene's genomic coordinates and
// fetches the region upstream of the gene start.
package entrez

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tfbscan/tfbscan/internal/fasta"
	"github.com/tfbscan/tfbscan/internal/logger"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// ErrNotFound is returned when NCBI has no record linked to an identifier.
var ErrNotFound = errors.New("entrez: not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("entrez %s: status %d", e.Op, e.Status)
}

// Client is an E-utilities client. Email is sent with every request as NCBI
// asks; APIKey is optional.
type Client struct {
	BaseURL    string
	Email      string
	APIKey     string
	HTTPClient *http.Client
	Log        *logger.Logger
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL, email, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Email:      email,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Log:        logger.Nop(),
	}
}

// GenomicInfo locates a gene on its chromosome. Start is greater than Stop
// for genes on the minus strand.
type GenomicInfo struct {
	ChrAccVer string
	Start     int
	Stop      int
}

// MinusStrand reports whether the gene lies on the minus strand.
func (g GenomicInfo) MinusStrand() bool { return g.Start >= g.Stop }

func (c *Client) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	started := time.Now()
	params.Set("tool", "tfbscan")
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
	u := fmt.Sprintf("%s/%s.fcgi?%s", c.BaseURL, op, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tfbscan")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log().LogRemoteCall(op, time.Since(started), err)
		return nil, fmt.Errorf("entrez %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := &StatusError{Op: op, Status: resp.StatusCode}
		c.log().LogRemoteCall(op, time.Since(started), err)
		return nil, err
	}
	b, err := io.ReadAll(resp.Body)
	c.log().LogRemoteCall(op, time.Since(started), err)
	return b, err
}

func (c *Client) log() *logger.Logger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}

// GeneID returns the gene id linked to an mRNA accession.
func (c *Client) GeneID(ctx context.Context, accession string) (string, error) {
	b, err := c.get(ctx, "elink", url.Values{
		"dbfrom":  {"nucleotide"},
		"db":      {"gene"},
		"id":      {accession},
		"retmode": {"json"},
	})
	if err != nil {
		return "", err
	}
	var body struct {
		LinkSets []struct {
			LinkSetDBs []struct {
				DBTo  string   `json:"dbto"`
				Links []string `json:"links"`
			} `json:"linksetdbs"`
		} `json:"linksets"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return "", fmt.Errorf("entrez elink: decode: %w", err)
	}
	for _, ls := range body.LinkSets {
		for _, db := range ls.LinkSetDBs {
			if len(db.Links) > 0 {
				return db.Links[0], nil
			}
		}
	}
	return "", fmt.Errorf("%w: no gene linked to %s", ErrNotFound, accession)
}

// GenomicInfo returns the first genomic placement of a gene.
func (c *Client) GenomicInfo(ctx context.Context, geneID string) (GenomicInfo, error) {
	var gi GenomicInfo
	b, err := c.get(ctx, "esummary", url.Values{
		"db":      {"gene"},
		"id":      {geneID},
		"retmode": {"json"},
	})
	if err != nil {
		return gi, err
	}
	var body struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return gi, fmt.Errorf("entrez esummary: decode: %w", err)
	}
	raw, ok := body.Result[geneID]
	if !ok {
		return gi, fmt.Errorf("%w: gene %s", ErrNotFound, geneID)
	}
	var doc struct {
		GenomicInfo []struct {
			ChrAccVer string      `json:"chraccver"`
			ChrStart  json.Number `json:"chrstart"`
			ChrStop   json.Number `json:"chrstop"`
		} `json:"genomicinfo"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return gi, fmt.Errorf("entrez esummary: decode gene %s: %w", geneID, err)
	}
	if len(doc.GenomicInfo) == 0 {
		return gi, fmt.Errorf("%w: no genomic info for gene %s", ErrNotFound, geneID)
	}
	first := doc.GenomicInfo[0]
	start, err := strconv.Atoi(first.ChrStart.String())
	if err != nil {
		return gi, fmt.Errorf("entrez esummary: chrstart: %w", err)
	}
	stop, err := strconv.Atoi(first.ChrStop.String())
	if err != nil {
		return gi, fmt.Errorf("entrez esummary: chrstop: %w", err)
	}
	return GenomicInfo{ChrAccVer: first.ChrAccVer, Start: start, Stop: stop}, nil
}

// FetchRegion downloads [start, stop] of a nucleotide record as FASTA.
// strand is 1 for plus and 2 for minus.
func (c *Client) FetchRegion(ctx context.Context, accession string, strand, start, stop int) (fasta.Record, error) {
	b, err := c.get(ctx, "efetch", url.Values{
		"db":        {"nucleotide"},
		"id":        {accession},
		"rettype":   {"fasta"},
		"retmode":   {"text"},
		"strand":    {strconv.Itoa(strand)},
		"seq_start": {strconv.Itoa(start)},
		"seq_stop":  {strconv.Itoa(stop)},
	})
	if err != nil {
		return fasta.Record{}, err
	}
	rec, err := fasta.ReadOne(bytes.NewReader(b))
	if err != nil {
		return fasta.Record{}, fmt.Errorf("entrez efetch %s: %w", accession, err)
	}
	return rec, nil
}

// UpstreamRegion fetches length bases upstream of the gene described by gi.
func (c *Client) UpstreamRegion(ctx context.Context, gi GenomicInfo, length int) (fasta.Record, error) {
	if gi.MinusStrand() {
		return c.FetchRegion(ctx, gi.ChrAccVer, 2, gi.Start+2, gi.Start+length)
	}
	return c.FetchRegion(ctx, gi.ChrAccVer, 1, gi.Start-length, gi.Start)
}

// Promoter resolves an mRNA accession to the promoter region of its gene.
func (c *Client) Promoter(ctx context.Context, accession string, length int) (fasta.Record, error) {
	geneID, err := c.GeneID(ctx, accession)
	if err != nil {
		return fasta.Record{}, err
	}
	gi, err := c.GenomicInfo(ctx, geneID)
	if err != nil {
		return fasta.Record{}, err
	}
	return c.UpstreamRegion(ctx, gi, length)
}
