package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"tunekeeper/internal/command"
)

// selectionPrefix routes component custom IDs to the selection store.
const selectionPrefix = "sel:"

const defaultSelectionTTL = 5 * time.Minute

// pendingSelection is one live choice menu: the selection handed over by a
// command plus the interaction whose response carries the menu.
type pendingSelection struct {
	sel         command.Selection
	interaction *discordgo.Interaction
	timer       *time.Timer
}

// selectionStore tracks live choice menus by custom ID. Each entry expires
// after its TTL; expire runs outside the lock and disables the menu.
type selectionStore struct {
	mu      sync.Mutex
	pending map[string]*pendingSelection
	expire  func(*pendingSelection)
}

func newSelectionStore(expire func(*pendingSelection)) *selectionStore {
	return &selectionStore{
		pending: make(map[string]*pendingSelection),
		expire:  expire,
	}
}

func (s *selectionStore) add(customID string, interaction *discordgo.Interaction, sel command.Selection) {
	ttl := sel.TTL
	if ttl <= 0 {
		ttl = defaultSelectionTTL
	}

	p := &pendingSelection{sel: sel, interaction: interaction}
	s.mu.Lock()
	s.pending[customID] = p
	s.mu.Unlock()

	p.timer = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		_, live := s.pending[customID]
		delete(s.pending, customID)
		s.mu.Unlock()
		if live && s.expire != nil {
			s.expire(p)
		}
	})
}

// get looks a menu up without consuming it.
func (s *selectionStore) get(customID string) (*pendingSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[customID]
	return p, ok
}

// take consumes a menu, stopping its expiry timer. A menu is picked from at
// most once.
func (s *selectionStore) take(customID string) (*pendingSelection, bool) {
	s.mu.Lock()
	p, ok := s.pending[customID]
	delete(s.pending, customID)
	s.mu.Unlock()

	if ok && p.timer != nil {
		p.timer.Stop()
	}
	return p, ok
}

// expireSelection strips the components off an expired menu's message so
// stale menus cannot be picked from.
func (b *Bot) expireSelection(p *pendingSelection) {
	empty := []discordgo.MessageComponent{}
	if _, err := b.dg.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{Components: &empty}); err != nil {
		b.log.Debug().Err(err).Msg("failed to disable expired selection menu")
	}
}
