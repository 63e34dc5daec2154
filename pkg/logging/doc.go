// Package logging configures the operational logger (log/slog) shared by the
// proxy, admin API and CLI.
//
//	log := logging.New(logging.Config{Level: logging.ParseLevel("debug"), Format: logging.FormatJSON})
//	log.Info("server started", "addr", ":3000")
//
// Components take a *slog.Logger through their options and fall back to Nop.
// This is unrelated to the request log served at /logs (package requestlog).
package logging
