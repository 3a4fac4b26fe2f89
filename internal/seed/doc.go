// Package seed loads whole catalogs from YAML documents.
//
// A document nests studios, games, maps, tabs, tools, galleries and media the
// same way the catalog does. Sibling order in the document becomes sibling
// position in the catalog:
//
//	studios:
//	  - name: Northwind
//	    games:
//	      - name: Harbor
//	        maps:
//	          - name: Docks
//	            tabs:
//	              - name: Cargo
//	                tools:
//	                  - name: Crane
//	                    icon: crane
//	                    galleries:
//	                      - name: Loading
//	                        search_token: loading
//	                        media:
//	                          - name: front.png
//	                            outline: {x: 0.1, y: 0.1, width: 0.5, height: 0.5}
//
// Documents are checked twice. Decoding rejects unknown fields, and the
// embedded CUE schema rejects malformed values. Import then writes the whole
// document through the store inside the caller's transaction, so any failure
// leaves the catalog untouched.
package seed
