package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/backoffice/internal/application/partnerimport"
)

// ImportSession is an uploaded partner file awaiting commit
type ImportSession struct {
	ID          string              `json:"id"`
	FileName    string              `json:"file_name"`
	TotalRows   int                 `json:"total_rows"`
	InvalidRows int                 `json:"invalid_rows"`
	Valid       bool                `json:"valid"`
	Rows        []partnerimport.Row `json:"rows"`
}

const importPath = "/partners/import"

// UploadImport sends a workbook and returns the validated session
func (c *Client) UploadImport(ctx context.Context, fileName string, content io.Reader) (*ImportSession, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("apiclient: failed to read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("apiclient: failed to build upload: %w", err)
	}

	var s ImportSession
	_, err = c.call(ctx, request{
		method:      http.MethodPost,
		path:        importPath,
		body:        &body,
		contentType: mw.FormDataContentType(),
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ImportSession fetches a session with its rows
func (c *Client) ImportSession(ctx context.Context, id string) (*ImportSession, error) {
	var s ImportSession
	if _, err := c.call(ctx, request{method: http.MethodGet, path: importPath + "/" + url.PathEscape(id)}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EditImportCell corrects one cell of row index (0-based) and returns the re-validated row
func (c *Client) EditImportCell(ctx context.Context, id string, index int, column, value string) (partnerimport.Row, error) {
	r, err := jsonRequest(http.MethodPatch,
		importPath+"/"+url.PathEscape(id)+"/rows/"+strconv.Itoa(index),
		map[string]string{"column": column, "value": value})
	if err != nil {
		return partnerimport.Row{}, err
	}
	var row partnerimport.Row
	_, err = c.call(ctx, r, &row)
	return row, err
}

// CommitImport inserts every row of a fully valid session
func (c *Client) CommitImport(ctx context.Context, id string) (int, error) {
	var out struct {
		Imported int `json:"imported"`
	}
	if _, err := c.call(ctx, request{method: http.MethodPost, path: importPath + "/" + url.PathEscape(id) + "/commit"}, &out); err != nil {
		return 0, err
	}
	return out.Imported, nil
}

// ImportTemplate downloads the empty workbook with the expected header
func (c *Client) ImportTemplate(ctx context.Context) ([]byte, error) {
	body, _, err := c.send(ctx, request{method: http.MethodGet, path: importPath + "/template"})
	return body, err
}
