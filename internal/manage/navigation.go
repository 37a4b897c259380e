// ABOUTME: Navigation tree of the management area with admin-only sections
// ABOUTME: Links are filtered by the caller's admin flag and marked active by request path

package manage

import "strings"

// Link targets
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// Link is a navigation entry. An entry has either an Href or Items.
type Link struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Href      string `json:"href,omitempty"`
	Target    string `json:"target,omitempty"`
	External  bool   `json:"external,omitempty"`
	OnlyAdmin bool   `json:"only_admin,omitempty"`
	Active    bool   `json:"active,omitempty"`
	Opened    bool   `json:"opened,omitempty"`
	Items     []Link `json:"items,omitempty"`
}

var navigation = []Link{
	{Name: "home", Icon: "home", Href: "/manage"},
	{Name: "boards", Icon: "layout-dashboard", Href: "/manage/boards"},
	{Name: "users", Icon: "user", OnlyAdmin: true, Items: []Link{
		{Name: "manage", Icon: "users", Href: "/manage/users"},
		{Name: "invites", Icon: "mail-forward", Href: "/manage/users/invites"},
	}},
	{Name: "access", Icon: "fingerprint", OnlyAdmin: true, Items: []Link{
		{Name: "permissionFlags", Icon: "lock-access", Href: "/manage/access/global"},
	}},
	{Name: "tools", Icon: "tool", OnlyAdmin: true, Items: []Link{
		{Name: "docker", Icon: "brand-docker", Href: "/manage/tools/docker"},
	}},
	{Name: "help", Icon: "question-mark", Items: []Link{
		{Name: "documentation", Icon: "book-2", Href: "https://homarr.dev/docs/about", Target: TargetBlank},
		{Name: "report", Icon: "brand-github", Href: "https://github.com/ajnart/homarr/issues/new/choose", Target: TargetBlank},
		{Name: "discord", Icon: "brand-discord", Href: "https://discord.com/invite/aCsmEV5RgA", Target: TargetBlank},
		{Name: "contribute", Icon: "brand-github", Href: "https://github.com/ajnart/homarr", Target: TargetBlank},
	}},
}

// Links returns a copy of the navigation tree. Admin-only sections are left
// out unless isAdmin is set.
func Links(isAdmin bool) []Link {
	out := make([]Link, 0, len(navigation))
	for _, l := range navigation {
		if l.OnlyAdmin && !isAdmin {
			continue
		}
		out = append(out, clone(l))
	}
	return out
}

func clone(l Link) Link {
	l.External = strings.HasPrefix(l.Href, "http")
	if len(l.Items) > 0 {
		items := make([]Link, len(l.Items))
		for i, item := range l.Items {
			items[i] = clone(item)
		}
		l.Items = items
	}
	return l
}

// MarkActive flags the links whose href the path ends with. A group is
// opened when any of its items is active.
func MarkActive(links []Link, path string) []Link {
	for i := range links {
		l := &links[i]
		if l.Href != "" {
			l.Active = strings.HasSuffix(path, l.Href)
		}
		for j := range l.Items {
			item := &l.Items[j]
			item.Active = strings.HasSuffix(path, item.Href)
			if item.Active {
				l.Opened = true
			}
		}
	}
	return links
}

// Find returns the top-level link with the given name.
func Find(links []Link, name string) (Link, bool) {
	for _, l := range links {
		if l.Name == name {
			return l, true
		}
	}
	return Link{}, false
}
