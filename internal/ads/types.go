package ads

// Record is a bibliographic record returned by the ADS search API.
// List-valued fields mirror the wire format; DOI and Page in particular
// arrive as arrays even when single-valued.
type Record struct {
	Bibcode     string   `json:"bibcode"`
	DOI         []string `json:"doi,omitempty"`
	Pub         string   `json:"pub,omitempty"` // Publication venue
	Volume      string   `json:"volume,omitempty"`
	Page        []string `json:"page,omitempty"`
	Year        string   `json:"year,omitempty"`
	Doctype     string   `json:"doctype,omitempty"`
	Identifiers []string `json:"identifier,omitempty"`
	Title       []string `json:"title,omitempty"`
	Authors     []string `json:"author,omitempty"`
}

// FirstDOI returns the record's primary DOI, or "" if it has none.
func (r Record) FirstDOI() string {
	if len(r.DOI) == 0 {
		return ""
	}
	return r.DOI[0]
}

// FirstPage returns the record's first page value, or "" if it has none.
func (r Record) FirstPage() string {
	if len(r.Page) == 0 {
		return ""
	}
	return r.Page[0]
}

// searchResponse is the wire envelope of the ADS search endpoint.
type searchResponse struct {
	Response struct {
		NumFound int      `json:"numFound"`
		Docs     []Record `json:"docs"`
	} `json:"response"`
}

// exportResponse is the wire envelope of the ADS export endpoint.
type exportResponse struct {
	Export string `json:"export"`
}
