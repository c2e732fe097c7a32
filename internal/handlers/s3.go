package handlers

import (
	"context"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/resource"
)

// S3 extends the generic handler with a detail pass for buckets. The bucket
// list returns names only; logging and encryption configuration, which the
// relationship rules read, appear only in the full document.
type S3 struct {
	*Generic
}

// NewS3 builds the s3 handler.
func NewS3(env Env) *S3 {
	return &S3{Generic: NewGeneric("s3", env)}
}

// Describe re-fetches a bucket and returns an enriched copy of the record.
// A record with the same composite key replaces the summary one.
func (h *S3) Describe(ctx context.Context, api cloud.API, rec resource.Record) ([]resource.Record, error) {
	if rec.Type != "AWS::S3::Bucket" {
		return nil, nil
	}

	desc, err := api.GetResource(ctx, rec.Type, rec.Identifier)
	if err != nil {
		return nil, err
	}
	props := resource.ParseProperties(desc.Properties)
	if len(props) == 0 {
		return nil, nil
	}

	enriched := rec
	enriched.Properties = props
	if arn, err := props.StringAt("Arn"); err == nil && arn != "" {
		enriched.ARN = arn
	}
	return []resource.Record{enriched}, nil
}
