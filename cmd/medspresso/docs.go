package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi/swagger.go; keep the two in sync.
//
// @title           medspresso API
// @version         1.0
// @description     Extract structured information from clinical text with a local Ollama daemon.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
