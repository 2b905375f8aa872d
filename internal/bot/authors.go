package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// normalizeAuthorName strips the decoration users and the model put
// around a name: mention markup, quotes, and French elision ("d'Alice").
func normalizeAuthorName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimLeft(name, "@#<>'\"` ")
	name = strings.TrimRight(name, ">'\"` ")
	lower := strings.ToLower(name)
	for _, prefix := range []string{"d'", "d’", "l'", "l’"} {
		if strings.HasPrefix(lower, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(name)
}

// resolveAuthorNames maps the names the model extracted to member ids.
// Nicknames, global names, and usernames all count; an exact match wins,
// otherwise a prefix match is accepted when it is unambiguous. Names
// that resolve to nothing are dropped.
func resolveAuthorNames(members []*discordgo.Member, names []string, botID string) []string {
	type candidate struct {
		id    string
		names []string
	}
	var candidates []candidate
	for _, mb := range members {
		if mb.User == nil || mb.User.ID == botID {
			continue
		}
		var ns []string
		for _, n := range []string{mb.Nick, mb.User.GlobalName, mb.User.Username} {
			if n != "" {
				ns = append(ns, strings.ToLower(n))
			}
		}
		if len(ns) > 0 {
			candidates = append(candidates, candidate{id: mb.User.ID, names: ns})
		}
	}

	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, raw := range names {
		needle := strings.ToLower(normalizeAuthorName(raw))
		if needle == "" {
			continue
		}

		exact := ""
		for _, c := range candidates {
			for _, n := range c.names {
				if n == needle {
					exact = c.id
					break
				}
			}
			if exact != "" {
				break
			}
		}
		if exact != "" {
			add(exact)
			continue
		}

		prefix := ""
		prefixCount := 0
		for _, c := range candidates {
			for _, n := range c.names {
				if strings.HasPrefix(n, needle) {
					prefix = c.id
					prefixCount++
					break
				}
			}
		}
		if prefixCount == 1 {
			add(prefix)
		}
	}
	return ids
}

func guildMembers(s *discordgo.Session, guildID string) []*discordgo.Member {
	g, err := s.State.Guild(guildID)
	if err != nil {
		return nil
	}
	return g.Members
}
