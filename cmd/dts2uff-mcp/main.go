// SPDX-License-Identifier: MPL-2.0

// Command dts2uff-mcp exposes the DTS-to-UFF conversion as MCP tools over
// stdio: convert_dts_to_uff and list_dts_tracks.
package main

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var version = "0.1.0"

func main() {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"} // stdout carries the MCP transport
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	s := server.NewMCPServer("dts2uff", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(newConvertTool(), handleConvert(logger))
	s.AddTool(newListTracksTool(), handleListTracks(logger))

	logger.Info("serving MCP over stdio", zap.String("version", version))
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
