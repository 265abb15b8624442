// Package accesspoint turns a deduplicated object list into bin-packed
// cloud access-point definitions: nested infrastructure-template documents
// plus one root document, sized to stay under platform policy and resource
// ceilings. It also resolves installed stacks back into original→alias URL
// maps.
package accesspoint

import "fmt"

// Template is a minimal CloudFormation document model, enough for
// access-point stacks. Serialized with encoding/json.
type Template struct {
	AWSTemplateFormatVersion string              `json:"AWSTemplateFormatVersion"`
	Description              string              `json:"Description,omitempty"`
	Resources                map[string]Resource `json:"Resources"`
	Outputs                  map[string]Output   `json:"Outputs,omitempty"`
}

type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties"`
}

type Output struct {
	Value any `json:"Value"`
}

const templateFormatVersion = "2010-09-09"

// accessPointName is the installed access point's name for a group.
func accessPointName(groupID string) string {
	return "ap-" + groupID
}

// groupResource builds one AWS::S3::AccessPoint resource. The policy is a
// single Allow statement granting GetObject/ListBucket on exactly the
// group's objects to the consuming account, optionally pinned to one VPC.
func groupResource(g Group, accountID, vpcID string) Resource {
	resources := []any{
		accessPointArn(g.ID, ""),
	}
	for _, e := range g.Entries {
		resources = append(resources, accessPointArn(g.ID, e.ObjectStoreKey))
	}

	properties := map[string]any{
		"Bucket": g.Bucket,
		"Name":   accessPointName(g.ID),
		"Policy": map[string]any{
			"Version": "2012-10-17",
			"Statement": []any{
				map[string]any{
					"Effect": "Allow",
					"Principal": map[string]any{
						"AWS": fmt.Sprintf("arn:aws:iam::%s:root", accountID),
					},
					"Action":   []any{"s3:GetObject", "s3:ListBucket"},
					"Resource": resources,
				},
			},
		},
	}
	if vpcID != "" {
		properties["VpcConfiguration"] = map[string]any{"VpcId": vpcID}
	}

	return Resource{Type: "AWS::S3::AccessPoint", Properties: properties}
}

// accessPointArn renders the access point ARN (key == "") or one object
// path under it. The owning region/account are only known at install time,
// hence the Fn::Sub substitution.
func accessPointArn(groupID, key string) map[string]any {
	base := fmt.Sprintf("arn:aws:s3:${AWS::Region}:${AWS::AccountId}:accesspoint/%s", accessPointName(groupID))
	if key != "" {
		base = fmt.Sprintf("%s/object/%s*", base, key)
	}
	return map[string]any{"Fn::Sub": base}
}

// Output key naming shared by generation and resolution.
func groupOutputKey(groupID, field string) string {
	return "Group" + groupID + field
}

// nestedTemplate builds one nested stack document holding the groups and
// re-exporting each group's {name, alias, bucket} triple.
func nestedTemplate(groups []Group, accountID, vpcID string) *Template {
	t := &Template{
		AWSTemplateFormatVersion: templateFormatVersion,
		Resources:                make(map[string]Resource, len(groups)),
		Outputs:                  make(map[string]Output, 3*len(groups)),
	}

	for _, g := range groups {
		resourceName := "AccessPoint" + g.ID
		t.Resources[resourceName] = groupResource(g, accountID, vpcID)
		t.Outputs[groupOutputKey(g.ID, "Name")] = Output{Value: accessPointName(g.ID)}
		t.Outputs[groupOutputKey(g.ID, "Alias")] = Output{
			Value: map[string]any{"Fn::GetAtt": []any{resourceName, "Alias"}},
		}
		t.Outputs[groupOutputKey(g.ID, "Bucket")] = Output{Value: g.Bucket}
	}

	return t
}

// rootTemplate chains the nested stacks and lifts every group output to the
// root so a caller can later resolve original→access-point URLs from one
// DescribeStacks call.
func rootTemplate(stacks []Stack, templateURLs map[string]string) *Template {
	t := &Template{
		AWSTemplateFormatVersion: templateFormatVersion,
		Description:              "Access point sharing resources",
		Resources:                make(map[string]Resource, len(stacks)),
		Outputs:                  make(map[string]Output),
	}

	for _, s := range stacks {
		t.Resources[s.ResourceName] = Resource{
			Type: "AWS::CloudFormation::Stack",
			Properties: map[string]any{
				"TemplateURL": templateURLs[s.ResourceName],
			},
		}
		for _, g := range s.Groups {
			for _, field := range []string{"Name", "Alias", "Bucket"} {
				key := groupOutputKey(g.ID, field)
				t.Outputs[key] = Output{
					Value: map[string]any{"Fn::GetAtt": []any{s.ResourceName, "Outputs." + key}},
				}
			}
		}
	}

	return t
}
