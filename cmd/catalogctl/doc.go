// Command catalogctl manages the SQLite catalog read by the catalog tag
// parser.
//
// Usage:
//
//	catalogctl <command> [flags] [PATH...]
//
// Commands:
//
//	import PATH...  Resolve each path with the manifest's plugins (the
//	                catalog itself excluded) and store the metadata of every
//	                whole-file item. Ranged items such as CUE tracks are
//	                skipped because the catalog is keyed by file, and so are
//	                files no tag parser could open.
//
//	show PATH...    Print the stored entries as JSON.
//
//	delete PATH...  Remove entries.
//
//	status          Show the entry count and the last update time.
//
//	clear           Remove every entry. Asks for confirmation on a terminal;
//	                pass -yes otherwise.
//
// Environment:
//
//	CATALOG_DB         Catalog database (default: ./catalog.db), overridden by -db
//	RESOLVER_MANIFEST  Plugin manifest used by import, overridden by -manifest
package main
