package accesspoint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3control"

	"github.com/seqshare/seqshare/internal/common"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newCloudFormationClient = func(cfg aws.Config) *cloudformation.Client {
		return cloudformation.NewFromConfig(cfg)
	}

	describeStacks = func(c *cloudformation.Client, ctx context.Context, in *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
		return c.DescribeStacks(ctx, in)
	}

	newS3ControlClient = func(cfg aws.Config) *s3control.Client {
		return s3control.NewFromConfig(cfg)
	}

	getAccessPointPolicy = func(c *s3control.Client, ctx context.Context, in *s3control.GetAccessPointPolicyInput) (*s3control.GetAccessPointPolicyOutput, error) {
		return c.GetAccessPointPolicy(ctx, in)
	}
)

// resolvedGroup is one installed access point as seen from the root stack
// outputs.
type resolvedGroup struct {
	Name   string
	Alias  string
	Bucket string
}

// Resolver maps original bucket-store URLs to their installed access-point
// alias URLs by reading the live root stack.
type Resolver struct {
	region string
	// installAccountID owns the stack and its access points.
	installAccountID string
}

func NewResolver(region, installAccountID string) *Resolver {
	return &Resolver{region: region, installAccountID: installAccountID}
}

// Resolve reads the root stack's group outputs, fetches every group's live
// access-point policy and returns a map from each shared object's original
// URL to its access-point alias URL.
//
// There is no partial result: any service failure or unexpected policy
// shape fails the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, rootStackName string) (map[string]string, error) {
	cfg, err := loadDefaultAWSConfig(ctx, awsconfig.WithRegion(r.region))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}

	groups, err := r.describeRootStack(ctx, cfg, rootStackName)
	if err != nil {
		return nil, err
	}

	s3ctl := newS3ControlClient(cfg)

	resolved := make(map[string]string)
	for _, g := range groups {
		out, err := getAccessPointPolicy(s3ctl, ctx, &s3control.GetAccessPointPolicyInput{
			AccountId: aws.String(r.installAccountID),
			Name:      aws.String(g.Name),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: reading access point policy for %s: %v", common.ErrExternalService, g.Name, err)
		}
		if out.Policy == nil {
			return nil, fmt.Errorf("access point %s has no policy", g.Name)
		}
		if err := collectPolicyObjects(*out.Policy, g, resolved); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

func (r *Resolver) describeRootStack(ctx context.Context, cfg aws.Config, rootStackName string) ([]resolvedGroup, error) {
	cfn := newCloudFormationClient(cfg)

	out, err := describeStacks(cfn, ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(rootStackName),
	})
	if err != nil {
		// DescribeStacks reports a missing stack as a validation error,
		// not an empty list.
		if strings.Contains(err.Error(), "does not exist") {
			return nil, fmt.Errorf("%w: %s", common.ErrStackNotInstalled, rootStackName)
		}
		return nil, fmt.Errorf("%w: describing stack %s: %v", common.ErrExternalService, rootStackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrStackNotInstalled, rootStackName)
	}

	return groupsFromOutputs(out), nil
}

// groupsFromOutputs folds the root stack's Group<ID>{Name,Alias,Bucket}
// output triples back into groups.
func groupsFromOutputs(out *cloudformation.DescribeStacksOutput) []resolvedGroup {
	byID := make(map[string]*resolvedGroup)
	var order []string

	for _, o := range out.Stacks[0].Outputs {
		if o.OutputKey == nil || o.OutputValue == nil {
			continue
		}
		key := *o.OutputKey
		if !strings.HasPrefix(key, "Group") {
			continue
		}
		var field string
		for _, f := range []string{"Name", "Alias", "Bucket"} {
			if strings.HasSuffix(key, f) {
				field = f
			}
		}
		if field == "" {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(key, "Group"), field)
		g, ok := byID[id]
		if !ok {
			g = &resolvedGroup{}
			byID[id] = g
			order = append(order, id)
		}
		switch field {
		case "Name":
			g.Name = *o.OutputValue
		case "Alias":
			g.Alias = *o.OutputValue
		case "Bucket":
			g.Bucket = *o.OutputValue
		}
	}

	groups := make([]resolvedGroup, 0, len(order))
	for _, id := range order {
		if g := byID[id]; g.Name != "" && g.Alias != "" && g.Bucket != "" {
			groups = append(groups, *g)
		}
	}
	return groups
}

// policyDocument matches the single-statement policy shape the generator
// writes. Anything else is an error.
type policyDocument struct {
	Statement []struct {
		Action   json.RawMessage `json:"Action"`
		Resource json.RawMessage `json:"Resource"`
	} `json:"Statement"`
}

// collectPolicyObjects parses a group's live policy and adds
// original URL → alias URL pairs into dst.
func collectPolicyObjects(policy string, g resolvedGroup, dst map[string]string) error {
	var doc policyDocument
	if err := json.Unmarshal([]byte(policy), &doc); err != nil {
		return fmt.Errorf("access point %s: malformed policy: %w", g.Name, err)
	}
	if len(doc.Statement) != 1 {
		return fmt.Errorf("access point %s: expected a single policy statement, got %d", g.Name, len(doc.Statement))
	}

	resources, err := decodeStringOrList(doc.Statement[0].Resource)
	if err != nil {
		return fmt.Errorf("access point %s: malformed policy resources: %w", g.Name, err)
	}

	objectPrefix := "accesspoint/" + g.Name + "/object/"
	for _, res := range resources {
		parsed, err := arn.Parse(res)
		if err != nil {
			return fmt.Errorf("access point %s: bad resource ARN %q: %w", g.Name, res, err)
		}
		if parsed.Resource == "accesspoint/"+g.Name {
			continue
		}
		if !strings.HasPrefix(parsed.Resource, objectPrefix) {
			return fmt.Errorf("access point %s: unexpected resource %q", g.Name, parsed.Resource)
		}
		key := strings.TrimSuffix(strings.TrimPrefix(parsed.Resource, objectPrefix), "*")
		dst[fmt.Sprintf("s3://%s/%s", g.Bucket, key)] = fmt.Sprintf("s3://%s/%s", g.Alias, key)
	}
	return nil
}

func decodeStringOrList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []string{single}, nil
}
