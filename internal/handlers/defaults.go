package handlers

import "aws-graphx/internal/registry"

// Defaults registers the full handler set: the specialized ec2, rds, and s3
// handlers plus a generic handler per remaining catalogued service.
func Defaults(r *registry.Registry, env Env) {
	r.Register(NewEC2(env))
	r.Register(NewRDS(env))
	r.Register(NewS3(env))
	for _, service := range Services() {
		switch service {
		case "ec2", "rds", "s3":
			continue
		}
		r.Register(NewGeneric(service, env))
	}
}
