package services

import (
	"context"
	"regexp"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/pkg/utils"
)

// MentionAll is the token that addresses every group member.
const MentionAll = utils.ReservedMention

// A mention runs from '@' up to the next whitespace or '@'.
var mentionRegex = regexp.MustCompile(`@([^\s@]+)`)

// ParseMentions returns the distinct mentioned names in order of first
// appearance, without the author's own username.
func ParseMentions(content, authorUsername string) []string {
	// trailing blank so a mention at end of content is terminated like any other
	content += " "
	seen := make(map[string]bool)
	var names []string
	for _, m := range mentionRegex.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if name == authorUsername || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// MentionResolver turns mentions into a Targeting for one group.
type MentionResolver struct {
	watchers WatcherStore
}

func NewMentionResolver(watchers WatcherStore) *MentionResolver {
	return &MentionResolver{watchers: watchers}
}

// Resolve returns Broadcast when nobody (other than the author) is mentioned
// or "@all" is present. Otherwise each name is resolved to a watcher id and
// kept only when that watcher is in members; unknown names and non-members
// are dropped silently.
func (r *MentionResolver) Resolve(ctx context.Context, content, authorUsername string, members []string) (models.Targeting, error) {
	names := ParseMentions(content, authorUsername)
	if len(names) == 0 {
		return models.BroadcastTargeting(), nil
	}
	for _, n := range names {
		if n == MentionAll {
			return models.BroadcastTargeting(), nil
		}
	}

	found, err := r.watchers.FindByUsernames(ctx, names)
	if err != nil {
		return models.Targeting{}, err
	}
	idByName := make(map[string]string, len(found))
	for _, w := range found {
		idByName[w.Username] = w.WatcherID
	}
	isMember := make(map[string]bool, len(members))
	for _, id := range members {
		isMember[id] = true
	}

	ids := []string{}
	seen := make(map[string]bool)
	for _, n := range names {
		id, ok := idByName[n]
		if !ok || !isMember[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return models.ExplicitTargeting(ids), nil
}
