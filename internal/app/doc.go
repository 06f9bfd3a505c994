/*
Package app assembles the asset subsystem from a startup.Config.

New wires the path resolver, asset store, thumbnail cache, worker pool,
protocol dispatcher, memory gate and (optionally) the sqlite catalog, and
builds the in-process router. Close drains the pool before releasing the
catalog and libvips.

	cfg, err := startup.LoadConfig()
	...
	a, err := app.New(ctx, cfg)
	defer a.Close()

	vp, _ := a.SaveTempImage(ctx, pastedDataURI)
	a.Dispatch("thumb://localhost/"+url.PathEscape(vp)+"?w=200", respond)
*/
package app
