package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	drive "google.golang.org/api/drive/v3"

	"github.com/zbarettnymbl/Deep-Agent/drive/gdrive"
)

//go:embed tools/driveListRecentFiles.md
var driveListRecentFilesDesc string

//go:embed tools/driveFileMetadata.md
var driveFileMetadataDesc string

// ListRecentFilesInput bounds a modified-time query. An empty window defaults
// to the last 24 hours.
type ListRecentFilesInput struct {
	StartISO string `json:"startISO,omitempty" description:"window start timestamp (RFC3339)"`
	EndISO   string `json:"endISO,omitempty" description:"window end timestamp (RFC3339)"`
	PageSize int64  `json:"pageSize,omitempty" description:"maximum number of files to return (1-100, default 25)"`
}

// DriveFile is the reduced metadata record the tools return.
type DriveFile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	WebViewLink  string   `json:"webViewLink,omitempty"`
	Owners       []string `json:"owners,omitempty"`
}

type ListRecentFilesOutput struct {
	Files []DriveFile `json:"files,omitempty"`
}

type FileMetadataInput struct {
	FileID string `json:"fileId" description:"Google Drive file identifier"`
}

type FileMetadataOutput struct {
	Metadata string `json:"metadata"`
}

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service

	// List recent files
	if err := protoserver.RegisterTool[*ListRecentFilesInput, *ListRecentFilesOutput](base.Registry, "driveListRecentFiles", driveListRecentFilesDesc, func(ctx context.Context, in *ListRecentFilesInput) (*schema.CallToolResult, *jsonrpc.Error) {
		start, end, err := resolveWindow(in.StartISO, in.EndISO)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		files, err := svc.Client().ListModifiedBetween(ctx, start, end, in.PageSize)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		out := &ListRecentFilesOutput{Files: make([]DriveFile, 0, len(files))}
		for _, f := range files {
			out.Files = append(out.Files, toDriveFile(f))
		}
		return buildTextResult(svc, gdrive.SummarizeFiles(files), out)
	}); err != nil {
		return err
	}

	// File metadata
	if err := protoserver.RegisterTool[*FileMetadataInput, *FileMetadataOutput](base.Registry, "driveFileMetadata", driveFileMetadataDesc, func(ctx context.Context, in *FileMetadataInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.FileID == "" {
			return buildErrorResult("fileId is required")
		}
		file, err := svc.Client().GetMetadata(ctx, in.FileID)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		text := gdrive.FormatMetadata(file)
		return buildTextResult(svc, text, &FileMetadataOutput{Metadata: text})
	}); err != nil {
		return err
	}

	return nil
}

// resolveWindow parses the window bounds, defaulting to the last 24 hours
// when both are empty.
func resolveWindow(startISO, endISO string) (time.Time, time.Time, error) {
	if startISO == "" && endISO == "" {
		end := time.Now().UTC()
		return end.Add(-24 * time.Hour), end, nil
	}
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid startISO: %v", err)
	}
	end, err := time.Parse(time.RFC3339, endISO)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid endISO: %v", err)
	}
	return start.UTC(), end.UTC(), nil
}

func toDriveFile(f *drive.File) DriveFile {
	out := DriveFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ModifiedTime: f.ModifiedTime, WebViewLink: f.WebViewLink}
	for _, o := range f.Owners {
		switch {
		case o.DisplayName != "":
			out.Owners = append(out.Owners, o.DisplayName)
		case o.EmailAddress != "":
			out.Owners = append(out.Owners, o.EmailAddress)
		}
	}
	return out
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildTextResult(service *Service, text string, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: text}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}
