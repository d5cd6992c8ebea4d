// Package transcode rewrites form documents between the two directive
// surface styles: the canonical bracket-tag style ({% field ... %}) and the
// HTML-comment style (<!-- field ... -->). Both directions share one
// fence-aware scanner so that fenced and inline code content is never
// rewritten. The same scanner backs style detection and consistency checks.
package transcode
