package static

import "strings"

// mediaTypeByExt maps a file extension (without the leading dot, matched
// case-insensitively) to its response Content-Type.
var mediaTypeByExt = map[string]string{
	"aac":   "audio/aac",
	"avi":   "video/x-msvideo",
	"bmp":   "image/bmp",
	"cgi":   "application/x-cgi-script",
	"css":   "text/css",
	"csv":   "text/csv",
	"epub":  "application/epub+zip",
	"gz":    "application/gzip",
	"gif":   "image/gif",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/vnd.microsoft.icon",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"js":    "text/javascript",
	"json":  "application/json",
	"mp3":   "audio/mpeg",
	"mp4":   "video/mp4",
	"oga":   "audio/ogg",
	"png":   "image/png",
	"pdf":   "application/pdf",
	"php":   "application/php",
	"rtf":   "application/rtf",
	"svg":   "image/svg+xml",
	"swf":   "application/x-shockwave-flash",
	"ttf":   "font/ttf",
	"txt":   "text/plain",
	"wav":   "audio/wav",
	"weba":  "audio/webm",
	"webm":  "video/webm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xhtml": "application/xhtml+xml",
	"xml":   "application/xml",
	"zip":   "application/zip",
}

const defaultMediaType = "application/octet-stream"

// MediaTypeByExt returns the Content-Type for ext (without its leading
// dot), defaulting to application/octet-stream for unknown extensions.
func MediaTypeByExt(ext string) string {
	if t, ok := mediaTypeByExt[strings.ToLower(ext)]; ok {
		return t
	}
	return defaultMediaType
}
