package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
)

func TestParseMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		author  string
		want    []string
	}{
		{name: "none", content: "hello there", author: "alice", want: nil},
		{name: "single at end", content: "hi @bob", author: "alice", want: []string{"bob"}},
		{name: "adjacent mentions", content: "@bob@carol look", author: "alice", want: []string{"bob", "carol"}},
		{name: "duplicates collapse", content: "@bob and @bob again", author: "alice", want: []string{"bob"}},
		{name: "author removed", content: "@alice @bob", author: "alice", want: []string{"bob"}},
		{name: "only self", content: "@alice", author: "alice", want: nil},
		{name: "newline terminates", content: "@bob\nnext line", author: "alice", want: []string{"bob"}},
		{name: "bare at sign", content: "email me @ home", author: "alice", want: nil},
		{name: "all token", content: "@all heads up", author: "alice", want: []string{"all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ParseMentions(tt.content, tt.author))
		})
	}
}

func TestMentionResolverResolve(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	h.watcher(t, "d", "dave") // registered, not a member
	r := services.NewMentionResolver(h.stores.Watchers)
	members := []string{"a", "b", "c"}
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		want    models.Targeting
	}{
		{name: "no mentions broadcasts", content: "hello", want: models.BroadcastTargeting()},
		{name: "self mention broadcasts", content: "@alice note to self", want: models.BroadcastTargeting()},
		{name: "all broadcasts", content: "@bob @all", want: models.BroadcastTargeting()},
		{name: "member resolved", content: "@carol see this", want: models.ExplicitTargeting([]string{"c"})},
		{name: "order of first mention", content: "@carol @bob", want: models.ExplicitTargeting([]string{"c", "b"})},
		{name: "non member dropped", content: "@dave @bob", want: models.ExplicitTargeting([]string{"b"})},
		{name: "unknown only yields empty explicit", content: "@nobody", want: models.ExplicitTargeting(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.content, "alice", members)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
