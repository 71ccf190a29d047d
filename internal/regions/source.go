package regions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
)

var (
	stateAGS    = regexp.MustCompile(`^\d{2}$`)
	districtAGS = regexp.MustCompile(`^\d{5}$`)
)

// Dataset is the import payload of states and districts
type Dataset struct {
	States    []domain.State    `json:"states"`
	Districts []domain.District `json:"districts"`
}

// Parse decodes and validates a dataset
func Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks AGS formats and that every district belongs to a listed state
func (ds *Dataset) Validate() error {
	states := make(map[string]bool, len(ds.States))
	for i := range ds.States {
		s := &ds.States[i]
		s.Name = strings.TrimSpace(s.Name)
		if !stateAGS.MatchString(s.AGS) || s.Name == "" {
			return fmt.Errorf("invalid state %q (%q)", s.AGS, s.Name)
		}
		states[s.AGS] = true
	}
	for i := range ds.Districts {
		d := &ds.Districts[i]
		d.Name = strings.TrimSpace(d.Name)
		if !districtAGS.MatchString(d.AGS) || d.Name == "" {
			return fmt.Errorf("invalid district %q (%q)", d.AGS, d.Name)
		}
		if d.StateAGS == "" {
			d.StateAGS = d.AGS[:2]
		}
		if !states[d.StateAGS] || !strings.HasPrefix(d.AGS, d.StateAGS) {
			return fmt.Errorf("district %s references unknown state %q", d.AGS, d.StateAGS)
		}
	}
	return nil
}

// LoadFile reads a dataset from a JSON file
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Fetch reads a dataset from an HTTP endpoint
func Fetch(ctx context.Context, client *http.Client, url string) (*Dataset, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger.ExternalServiceCall("regions", "Fetch", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("regions", "Fetch", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("regions source answered %s", resp.Status)
		logger.ExternalServiceResult("regions", "Fetch", err)
		return nil, err
	}
	ds, err := Parse(resp.Body)
	logger.ExternalServiceResult("regions", "Fetch", err)
	return ds, err
}
