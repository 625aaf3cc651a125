package fetch

// Identity is one browser-shaped request profile. The fetcher rotates
// identities between attempts so a blocked origin sees a varied client
// rather than the same fingerprint again.
type Identity struct {
	UserAgent string
	Headers   map[string]string
}

// DefaultIdentities returns the rotating header pool used against French
// listing sites: current desktop browsers with fr-FR language preferences.
func DefaultIdentities() []Identity {
	common := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "fr-FR,fr;q=0.9,en-US;q=0.8",
		"Accept-Encoding":           "gzip, deflate",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Cache-Control":             "max-age=0",
	}

	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	}

	identities := make([]Identity, 0, len(agents))
	for _, agent := range agents {
		identities = append(identities, Identity{UserAgent: agent, Headers: common})
	}
	return identities
}
