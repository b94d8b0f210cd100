package testutil

// Sample tab snapshots, in the YAML form the daemon seeds its tab table from.

// WindowSnapshotYAML is one focused window with a tab in most states: an
// active checked tab, a pinned tab, an audible tab, a suspended tab and a
// browser page that can never be suspended.
var WindowSnapshotYAML = `focused_window: 1
tabs:
  - id: 1
    window_id: 1
    url: https://example.com/article
    title: Article
    active: true
    highlighted: true
    checked: true
  - id: 2
    window_id: 1
    url: https://mail.example.com
    title: Mail
    pinned: true
    checked: true
  - id: 3
    window_id: 1
    url: https://music.example.com
    title: Music
    audible: true
    checked: true
  - id: 4
    window_id: 1
    url: https://docs.example.com
    title: Docs
    suspended: true
    checked: true
  - id: 5
    window_id: 1
    url: chrome://settings
    title: Settings
    checked: true
`

// SelectionSnapshotYAML has three highlighted tabs in the focused window.
var SelectionSnapshotYAML = `focused_window: 1
tabs:
  - id: 1
    window_id: 1
    url: https://a.example.com
    active: true
    highlighted: true
    checked: true
  - id: 2
    window_id: 1
    url: https://b.example.com
    highlighted: true
    checked: true
  - id: 3
    window_id: 1
    url: https://c.example.com
    highlighted: true
    checked: true
`

// UncheckedSnapshotYAML has an active tab the authority has not inspected,
// so its status reads as unknown.
var UncheckedSnapshotYAML = `focused_window: 1
tabs:
  - id: 1
    window_id: 1
    url: https://slow.example.com
    active: true
`

// EmptySnapshotYAML has no tabs at all.
var EmptySnapshotYAML = `focused_window: 0
tabs: []
`
