// Package crud implements list, get, create, update and delete against any
// collection-shaped endpoint of the server.
//
// Service is generic over the decoded item type T and the request body type
// B, so a typed record can be read while a partial map is written:
//
//	posts := crud.New[model.Record, map[string]any](c, "api/collections/posts/records")
//	page, err := posts.GetList(ctx, crud.ListRequest{PerPage: 50, Query: transport.Q("sort", "-created")})
package crud
