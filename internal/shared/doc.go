// Package shared holds cross-cutting helpers that belong to no single
// layer. Today that is only testutil, the in-memory slog capture used by
// tests that assert on structured log output.
package shared
