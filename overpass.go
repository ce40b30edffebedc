package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const overpassTimeout = 30 * time.Second

type overpassClient struct {
	url      string
	upstream *upstreamClient
}

func (c *overpassClient) query(ctx context.Context, q string) ([]byte, error) {
	return c.upstream.postForm(ctx, c.url, url.Values{"data": {q}}, overpassTimeout)
}

// coordinate decodes a JSON number or a numeric string. Anything else,
// including null, leaves it invalid instead of failing the whole payload.
type coordinate struct {
	value float64
	valid bool
}

func (c *coordinate) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(strings.Trim(string(b), `"`), 64)
	if err != nil {
		*c = coordinate{}
		return nil
	}
	*c = coordinate{value: f, valid: true}
	return nil
}

type overpassCenter struct {
	Lat coordinate `json:"lat"`
	Lon coordinate `json:"lon"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    coordinate        `json:"lat"`
	Lon    coordinate        `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// point returns the node position, or the centre computed for ways and relations.
func (e overpassElement) point() (GeoPoint, bool) {
	if e.Lat.valid && e.Lon.valid {
		return GeoPoint{Latitude: e.Lat.value, Longitude: e.Lon.value}, true
	}
	if e.Center != nil && e.Center.Lat.valid && e.Center.Lon.valid {
		return GeoPoint{Latitude: e.Center.Lat.value, Longitude: e.Center.Lon.value}, true
	}
	return GeoPoint{}, false
}

// decodeOverpassElements reads at most limit elements. A body that is not JSON
// is an error; a JSON document without an elements list yields nothing, and
// elements that fail to decode are skipped.
func decodeOverpassElements(body []byte, limit int) ([]overpassElement, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(envelope["elements"], &raw); err != nil {
		return nil, nil
	}
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}
	elements := make([]overpassElement, 0, len(raw))
	for _, r := range raw {
		var el overpassElement
		if err := json.Unmarshal(r, &el); err != nil {
			continue
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func formatOverpassFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// buildOverpassRadiusQuery unions node, way and relation lookups for every tag
// group around the origin. Filters inside a group are ANDed, groups are ORed.
func buildOverpassRadiusQuery(origin GeoPoint, radiusM int, groups []TagGroup) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", radiusM, formatOverpassFloat(origin.Latitude), formatOverpassFloat(origin.Longitude))
	var body strings.Builder
	for _, group := range groups {
		var filters strings.Builder
		for _, f := range group {
			fmt.Fprintf(&filters, "[%q=%q]", f.Key, f.Value)
		}
		for _, kind := range []string{"node", "way", "relation"} {
			body.WriteString(kind + around + filters.String() + ";")
		}
	}
	return fmt.Sprintf("[out:json][timeout:25];(%s);out center %d;", body.String(), overpassResultLimit)
}

// buildOverpassPostalQuery finds any Canadian object tagged with the postal
// code, with or without the middle space.
func buildOverpassPostalQuery(compactCode string) string {
	pattern := fmt.Sprintf("^%s ?%s$", compactCode[:3], compactCode[3:])
	var body strings.Builder
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&body, "%s(area.ca)[\"addr:postcode\"~%q];", kind, pattern)
	}
	return `[out:json][timeout:25];area["ISO3166-1"="CA"][admin_level=2]->.ca;(` + body.String() + ");out center 1;"
}

// locatePostalCode is the last-resort geocode for Canadian postal codes that
// the search index does not know as places.
func (c *overpassClient) locatePostalCode(ctx context.Context, postalCode string) (*GeocodeResult, error) {
	raw := compactPostalCode(postalCode)
	if len(raw) != 6 {
		return nil, nil
	}
	body, err := c.query(ctx, buildOverpassPostalQuery(raw))
	if err != nil {
		return nil, err
	}
	elements, err := decodeOverpassElements(body, 1)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, nil
	}
	pt, ok := elements[0].point()
	if !ok {
		return nil, nil
	}
	return &GeocodeResult{
		Point:       pt,
		DisplayName: NormalizePostalCode(raw, "CA") + ", Canada",
	}, nil
}
