/*
Package filesystem provides file access with automatic retry for NFS stale
file handle errors.

Plugins read containers and audio headers from music libraries that are often
NFS mounts. A library rescan on the server side can invalidate open handles,
which surfaces as ESTALE (errno 116). The helpers here retry exactly that
error with capped exponential backoff and fail immediately on anything else.

# Usage

	data, err := filesystem.ReadFileWithRetry("/music/album.cue", filesystem.DefaultRetryConfig())

	head, err := filesystem.ReadHeadWithRetry(path, 3072, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Retry Behavior

Defaults: 3 retries, 50ms initial backoff, 500ms cap.

# Metrics

Operations are reported to the Observer set with SetObserver, labeled with the
volume name returned by the VolumeResolver set with SetDefaultVolumeResolver.
Without an observer nothing is recorded.
*/
package filesystem
