// Package narrate renders a search tree as one English sentence so a user
// can check what they built before running it.
//
// Narration is a pure recursive walk. Every phrase goes through a
// PhraseFunc keyed by a gettext-style message id with %{name}
// placeholders, so a caller can plug in a translation catalogue. Labels
// come from the Config: graph summaries, operator labels built from
// facets, per-node metadata, and an optional resolver for nodes the
// metadata does not cover.
//
// Narration never fails. A fragment that cannot be described (empty
// subject, missing operator, multi-segment relationship path) renders as
// "" and is dropped from the surrounding sentence.
package narrate
