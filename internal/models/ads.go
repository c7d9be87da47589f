package models

import "fmt"

// AdNetwork — рекламная сеть для редиректа внешних ссылок.
type AdNetwork string

const (
	AdNetworkLinkvertise AdNetwork = "linkvertise"
	AdNetworkAdMaven     AdNetwork = "admaven"
)

// ParseAdNetwork разбирает значение из формы.
func ParseAdNetwork(s string) (AdNetwork, error) {
	switch AdNetwork(s) {
	case AdNetworkLinkvertise, AdNetworkAdMaven:
		return AdNetwork(s), nil
	default:
		return "", fmt.Errorf("unknown ad network %q", s)
	}
}

// Title — подпись для UI.
func (n AdNetwork) Title() string {
	switch n {
	case AdNetworkAdMaven:
		return "AdMaven"
	default:
		return "Linkvertise"
	}
}
