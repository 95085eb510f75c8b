package session

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want string
	}{
		{"empty", "", "Unknown Device"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", "iOS Device"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", "iOS Device"},
		{"ipod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_0 like Mac OS X)", "iOS Device"},
		{"android beats chrome", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", "Android Device"},
		{"generic mobile", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80) Mobile", "Mobile Device"},
		{"generic phone", "SomeAgent (Windows Phone 10.0)", "Mobile Device"},
		{"edge beats chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Edge Browser"},
		{"chrome beats safari token", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome Browser"},
		{"firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0", "Firefox Browser"},
		{"safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", "Safari Browser"},
		{"windows without engine", "Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1)", "Windows PC"},
		{"win64 token only", "custom-agent Win64", "Windows PC"},
		{"mac without engine", "SomeDownloader (Macintosh; Intel Mac OS X)", "Mac Computer"},
		{"linux without engine", "curl-ish agent (X11; Linux x86_64)", "Linux PC"},
		{"unmatched", "totally-unknown-agent/1.0", "Desktop Browser"},
		{"case insensitive", "MOZILLA/5.0 (LINUX) FIREFOX/122.0", "Firefox Browser"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.ua); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.ua, got, tc.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	ua := "Mozilla/5.0 (Linux; Android 14) Chrome/120.0 Mobile"
	first := Classify(ua)
	for i := 0; i < 10; i++ {
		if got := Classify(ua); got != first {
			t.Fatalf("Classify is not deterministic: %q then %q", first, got)
		}
	}
	if first != "Android Device" {
		t.Errorf("agent naming both Android and Chrome must classify as Android Device, got %q", first)
	}
}
