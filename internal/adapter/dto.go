package adapter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/drpg-sync/models"
)

type authResponse struct {
	Token string `json:"token"`
}

type productDTO struct {
	OrderProductID   int64         `json:"orderProductId"`
	Name             string        `json:"name"`
	Publisher        *publisherDTO `json:"publisher"`
	FileLastModified string        `json:"fileLastModified"`
	Files            []fileDTO     `json:"files"`
}

type publisherDTO struct {
	Name string `json:"name"`
}

type fileDTO struct {
	Index     int           `json:"index"`
	Filename  string        `json:"filename"`
	FileSize  int64         `json:"fileSize"`
	Checksums []checksumDTO `json:"checksums"`
}

type checksumDTO struct {
	Checksum     string `json:"checksum"`
	ChecksumDate string `json:"checksumDate"`
}

type prepareResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

func (p prepareResponse) pending() bool {
	return strings.HasPrefix(strings.ToLower(p.Status), "preparing")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	time.DateOnly,
}

// parseTimestamp accepts the ISO variants the catalog emits. Timestamps
// without a zone are read as UTC.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// newestChecksum picks the checksum with the latest date. Entries with an
// unreadable date lose to any dated one; ties keep catalog order.
func newestChecksum(checksums []checksumDTO) string {
	var (
		best     string
		bestDate time.Time
		found    bool
	)
	for _, c := range checksums {
		if c.Checksum == "" {
			continue
		}
		date, _ := parseTimestamp(c.ChecksumDate)
		if !found || date.After(bestDate) {
			best, bestDate, found = c.Checksum, date, true
		}
	}
	return strings.ToLower(best)
}

func itemID(orderProductID int64, index int) string {
	return strconv.FormatInt(orderProductID, 10) + "-" + strconv.Itoa(index)
}

func resolveToken(orderProductID int64, index int) string {
	return strconv.FormatInt(orderProductID, 10) + "/" + strconv.Itoa(index)
}

func parseResolveToken(token string) (string, string, error) {
	id, index, ok := strings.Cut(token, "/")
	if !ok || id == "" || index == "" {
		return "", "", fmt.Errorf("%w: malformed resolve token %q", ErrBadRequest, token)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", "", fmt.Errorf("%w: malformed resolve token %q", ErrBadRequest, token)
	}
	if _, err := strconv.Atoi(index); err != nil {
		return "", "", fmt.Errorf("%w: malformed resolve token %q", ErrBadRequest, token)
	}
	return id, index, nil
}

// toCatalogItems flattens products into one item per file. The second
// return lists timestamps that could not be parsed, for logging.
func toCatalogItems(products []productDTO) ([]models.CatalogItem, []string) {
	var (
		items      []models.CatalogItem
		unreadable []string
	)

	for _, p := range products {
		modified, err := parseTimestamp(p.FileLastModified)
		if err != nil && p.FileLastModified != "" {
			unreadable = append(unreadable, p.FileLastModified)
		}

		publisher := ""
		if p.Publisher != nil {
			publisher = p.Publisher.Name
		}

		for _, f := range p.Files {
			items = append(items, models.CatalogItem{
				ID:           itemID(p.OrderProductID, f.Index),
				ProductName:  p.Name,
				Publisher:    publisher,
				FileName:     f.Filename,
				Size:         f.FileSize,
				LastModified: modified,
				Checksum:     newestChecksum(f.Checksums),
				ResolveToken: resolveToken(p.OrderProductID, f.Index),
			})
		}
	}

	return items, unreadable
}
