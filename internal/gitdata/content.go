package gitdata

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

const (
	contentStrategyBlobConstant     = "blob"
	contentStrategyContentsConstant = "contents"
	contentFetchedMessageConstant   = "file content fetched"
	blobCreatedMessageConstant      = "blob created"
	base64LineBreakConstant         = "\n"
	emptyStringConstant             = ""
)

// contentEndpointSizeLimit is the largest file the path-addressed contents endpoint serves.
const contentEndpointSizeLimit = humanize.MiByte

// ContentOptions addresses a file on the contents endpoint.
type ContentOptions struct {
	// Path defaults to the descriptor path.
	Path string
	// Ref is passed through verbatim; empty selects the repository default branch.
	Ref string
}

// GetFileDescriptorContent reads the content of descriptor, choosing the blob endpoint for files above one
// mebibyte and the contents endpoint otherwise. Symbolic links are always read as blobs: the contents
// endpoint follows them and serves the target instead of the link.
func (service *Service) GetFileDescriptorContent(executionContext context.Context, repository Repository, descriptor TreeItem, options ContentOptions) (FileContent, error) {
	if validationError := repository.Validate(); validationError != nil {
		return FileContent{}, validationError
	}

	contentPath := options.Path
	if len(contentPath) == 0 {
		contentPath = descriptor.Path
	}

	strategy := contentStrategyContentsConstant
	var blob Blob
	var fetchError error
	if descriptor.Size > contentEndpointSizeLimit || descriptor.Mode == ModeSymlink {
		strategy = contentStrategyBlobConstant
		blob, fetchError = service.remoteAPI.GetBlob(executionContext, repository.Owner, repository.Name, descriptor.SHA)
		if fetchError != nil {
			return FileContent{}, newOperationError(operationNameGetBlobConstant, repository, descriptor.SHA, fetchError)
		}
	} else {
		blob, fetchError = service.remoteAPI.GetFileContent(executionContext, repository.Owner, repository.Name, contentPath, options.Ref)
		if fetchError != nil {
			return FileContent{}, newOperationError(operationNameGetFileContentConstant, repository, contentPath, fetchError)
		}
	}

	data, decodeError := DecodeBlobContent(blob)
	if decodeError != nil {
		return FileContent{}, newOperationError(operationNameDecodeContentConstant, repository, contentPath, decodeError)
	}

	service.loggerFor(executionContext, repository).Debug(
		contentFetchedMessageConstant,
		zap.String(logFieldPathConstant, contentPath),
		zap.String(logFieldStrategyConstant, strategy),
		zap.String(logFieldSizeConstant, humanize.IBytes(uint64(len(data)))),
	)

	sha := blob.SHA
	if len(sha) == 0 {
		sha = descriptor.SHA
	}
	return FileContent{Path: contentPath, SHA: sha, Data: data}, nil
}

// GetBlobContent reads and decodes a blob by sha.
func (service *Service) GetBlobContent(executionContext context.Context, repository Repository, blobSHA string) (FileContent, error) {
	if validationError := repository.Validate(); validationError != nil {
		return FileContent{}, validationError
	}

	blob, fetchError := service.remoteAPI.GetBlob(executionContext, repository.Owner, repository.Name, blobSHA)
	if fetchError != nil {
		return FileContent{}, newOperationError(operationNameGetBlobConstant, repository, blobSHA, fetchError)
	}

	data, decodeError := DecodeBlobContent(blob)
	if decodeError != nil {
		return FileContent{}, newOperationError(operationNameDecodeContentConstant, repository, blobSHA, decodeError)
	}
	return FileContent{SHA: blobSHA, Data: data}, nil
}

// CreateBlobForFile reads filePath from the staging area and creates a remote blob from it.
func (service *Service) CreateBlobForFile(executionContext context.Context, repository Repository, filePath string, encoding BlobEncoding) (string, error) {
	if validationError := repository.Validate(); validationError != nil {
		return emptyStringConstant, validationError
	}
	if service.stagingArea == nil {
		return emptyStringConstant, ErrStagingAreaNotConfigured
	}

	data, readError := service.stagingArea.ReadFile(filePath)
	if readError != nil {
		return emptyStringConstant, newOperationError(operationNameReadStagedFileConstant, repository, filePath, readError)
	}

	return service.createBlob(executionContext, repository, filePath, data, encoding)
}

func (service *Service) createBlob(executionContext context.Context, repository Repository, subject string, data []byte, encoding BlobEncoding) (string, error) {
	blob, createError := service.remoteAPI.CreateBlob(executionContext, repository.Owner, repository.Name, EncodeBlobInput(data, encoding))
	if createError != nil {
		return emptyStringConstant, newOperationError(operationNameCreateBlobConstant, repository, subject, createError)
	}

	service.loggerFor(executionContext, repository).Debug(
		blobCreatedMessageConstant,
		zap.String(logFieldPathConstant, subject),
		zap.String(logFieldSizeConstant, humanize.IBytes(uint64(len(data)))),
	)
	return blob.SHA, nil
}

// EncodeBlobInput renders data in the requested transfer encoding. EncodingAuto selects utf-8 for valid
// UTF-8 content and base64 otherwise.
func EncodeBlobInput(data []byte, encoding BlobEncoding) BlobInput {
	if encoding == EncodingAuto {
		encoding = EncodingBase64
		if utf8.Valid(data) {
			encoding = EncodingUTF8
		}
	}
	if encoding == EncodingBase64 {
		return BlobInput{Content: base64.StdEncoding.EncodeToString(data), Encoding: EncodingBase64}
	}
	return BlobInput{Content: string(data), Encoding: EncodingUTF8}
}

// DecodeBlobContent returns the raw bytes of blob. Base64 content may contain line breaks.
func DecodeBlobContent(blob Blob) ([]byte, error) {
	if blob.Encoding != EncodingBase64 {
		return []byte(blob.Content), nil
	}
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, base64LineBreakConstant, emptyStringConstant))
}

// LocalBlobSHA returns the git object id the content would have as a blob.
func LocalBlobSHA(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}
