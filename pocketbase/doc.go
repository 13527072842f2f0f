// Package pocketbase assembles a ready-to-use client from config.Client.
//
// New wires the logger, optional OpenTelemetry exporters, the HTTP
// executor, the layer stack and the configured auth storage, then exposes
// one accessor per API resource:
//
//	cfg := config.Client{BaseURL: "https://pb.example.com"}
//	pb, err := pocketbase.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pb.Close(ctx)
//
//	if _, err := pb.Admins().AuthWithPassword(ctx, service.AuthWithPasswordRequest{
//		Identity: "admin@example.com",
//		Password: "secret",
//	}); err != nil {
//		return err
//	}
//	posts, err := pb.Records("posts").GetList(ctx, crud.ListRequest{})
//
// Component adapts the same construction to component.Registry.
package pocketbase
