// prefs — пользовательские предпочтения процесса (сейчас — рекламная сеть
// для внешних ссылок). Только память: при перезапуске возвращается значение из конфига.
package prefs

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pribylovaa/go-catalog/internal/models"
)

// Placeholder — место подстановки ссылки в шаблоне редиректа.
const Placeholder = "{url}"

// Templates — шаблоны редиректа по сетям. Пустой шаблон — прямая ссылка.
type Templates map[models.AdNetwork]string

type Preferences struct {
	templates Templates

	mu      sync.RWMutex
	network models.AdNetwork
}

// New — предпочтения с сетью по умолчанию. Неизвестная сеть — ошибка.
func New(def models.AdNetwork, templates Templates) (*Preferences, error) {
	const op = "prefs.New"

	if def == "" {
		def = models.AdNetworkLinkvertise
	}

	n, err := models.ParseAdNetwork(string(def))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for k, tpl := range templates {
		if tpl != "" && !strings.Contains(tpl, Placeholder) {
			return nil, fmt.Errorf("%s: template for %s has no %s placeholder", op, k, Placeholder)
		}
	}

	return &Preferences{templates: templates, network: n}, nil
}

// AdNetwork — выбранная сеть.
func (p *Preferences) AdNetwork() models.AdNetwork {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.network
}

// SetAdNetwork меняет выбранную сеть.
func (p *Preferences) SetAdNetwork(n models.AdNetwork) error {
	const op = "prefs.SetAdNetwork"

	n, err := models.ParseAdNetwork(string(n))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	p.network = n
	p.mu.Unlock()

	return nil
}

// OutboundURL оборачивает внешнюю ссылку записи шаблоном выбранной сети.
// Пустая ссылка остаётся пустой.
func (p *Preferences) OutboundURL(link string) string {
	if link == "" {
		return ""
	}

	tpl := p.templates[p.AdNetwork()]
	if tpl == "" {
		return link
	}

	return strings.ReplaceAll(tpl, Placeholder, url.QueryEscape(link))
}
