package esdtest

import "strings"

// Description returns an ASMX-style service description advertising the
// retire operation at address.
func Description(address string) string {
	return strings.ReplaceAll(descriptionTemplate, "{{address}}", address)
}

const descriptionTemplate = `<?xml version="1.0" encoding="utf-8"?>
<wsdl:definitions xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/" xmlns:tns="http://www.flexerasoftware.com/esd/" xmlns:s="http://www.w3.org/2001/XMLSchema" xmlns:soap12="http://schemas.xmlsoap.org/wsdl/soap12/" xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/" targetNamespace="http://www.flexerasoftware.com/esd/">
  <wsdl:types>
    <s:schema elementFormDefault="qualified" targetNamespace="http://www.flexerasoftware.com/esd/">
      <s:element name="AddFlexeraIdForRetireCampaign">
        <s:complexType>
          <s:sequence>
            <s:element minOccurs="0" maxOccurs="1" name="flexeraId" type="s:string" />
          </s:sequence>
        </s:complexType>
      </s:element>
      <s:element name="AddFlexeraIdForRetireCampaignResponse">
        <s:complexType>
          <s:sequence>
            <s:element minOccurs="0" maxOccurs="1" name="AddFlexeraIdForRetireCampaignResult" type="tns:CampaignResult" />
          </s:sequence>
        </s:complexType>
      </s:element>
      <s:complexType name="CampaignResult">
        <s:sequence>
          <s:element minOccurs="1" maxOccurs="1" name="Success" type="s:boolean" />
          <s:element minOccurs="0" maxOccurs="1" name="CampaignId" type="s:string" />
          <s:element minOccurs="0" maxOccurs="1" name="FlexeraId" type="s:string" />
        </s:sequence>
      </s:complexType>
    </s:schema>
  </wsdl:types>
  <wsdl:message name="AddFlexeraIdForRetireCampaignSoapIn">
    <wsdl:part name="parameters" element="tns:AddFlexeraIdForRetireCampaign" />
  </wsdl:message>
  <wsdl:message name="AddFlexeraIdForRetireCampaignSoapOut">
    <wsdl:part name="parameters" element="tns:AddFlexeraIdForRetireCampaignResponse" />
  </wsdl:message>
  <wsdl:portType name="IntegrationSoap">
    <wsdl:operation name="AddFlexeraIdForRetireCampaign">
      <wsdl:input message="tns:AddFlexeraIdForRetireCampaignSoapIn" />
      <wsdl:output message="tns:AddFlexeraIdForRetireCampaignSoapOut" />
    </wsdl:operation>
  </wsdl:portType>
  <wsdl:binding name="IntegrationSoap" type="tns:IntegrationSoap">
    <soap:binding transport="http://schemas.xmlsoap.org/soap/http" />
    <wsdl:operation name="AddFlexeraIdForRetireCampaign">
      <soap:operation soapAction="http://www.flexerasoftware.com/esd/AddFlexeraIdForRetireCampaign" style="document" />
      <wsdl:input>
        <soap:body use="literal" />
      </wsdl:input>
      <wsdl:output>
        <soap:body use="literal" />
      </wsdl:output>
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:binding name="IntegrationSoap12" type="tns:IntegrationSoap">
    <soap12:binding transport="http://schemas.xmlsoap.org/soap/http" />
    <wsdl:operation name="AddFlexeraIdForRetireCampaign">
      <soap12:operation soapAction="http://www.flexerasoftware.com/esd/AddFlexeraIdForRetireCampaign" style="document" />
      <wsdl:input>
        <soap12:body use="literal" />
      </wsdl:input>
      <wsdl:output>
        <soap12:body use="literal" />
      </wsdl:output>
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:service name="Integration">
    <wsdl:port name="IntegrationSoap" binding="tns:IntegrationSoap">
      <soap:address location="{{address}}" />
    </wsdl:port>
    <wsdl:port name="IntegrationSoap12" binding="tns:IntegrationSoap12">
      <soap12:address location="{{address}}" />
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`
